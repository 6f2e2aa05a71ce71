package archive

var Upload = upload
