package usecase

import (
	"html/template"
	"strings"

	"github.com/pergamene/pergamene/pkg/domain/model"
)

// DefaultFooter is printed at the bottom of every diploma
const DefaultFooter = "Imposta di bollo assolta in modo virtuale. Autorizzazione Intendenza di Finanza di Roma n.9120/88"

const (
	defaultGender      = "nato/a"
	defaultStudentName = "studente"
)

// imageColumns reference signature and logo images shipped with the static assets
var imageColumns = []string{"firmar", "firmap", "firmad", "firma4", "firma5", "firma6", "logo1", "logo2", "logo3"}

// knownColumns always exist in template data, empty when the export lacks them
var knownColumns = []string{
	"nom_cog", "corsolau", "classe", "luogonas", "provnas", "statnas", "datanas", "datalaur",
	"voto", "lode", "sesso", "modulo", "protocol", "npergamena", "matri",
}

// homeCountry values are omitted from the printed birth place
var homeCountry = map[string]struct{}{"ITALIA": {}, "IT": {}, "I": {}}

type dataOptions struct {
	footer   string
	rawNames bool
}

// documentData is everything needed to render the documents of one record
type documentData struct {
	Module      string
	DisplayName string
	FileBase    string
	Diploma     map[string]any
	Cover       map[string]any
}

func (d documentData) diplomaFileName() string {
	return model.DiplomaPrefix + d.FileBase + "_" + d.Module + ".pdf"
}

func (d documentData) coverFileName() string {
	return model.CoverPrefix + d.FileBase + ".pdf"
}

func buildDocumentData(rec model.Record, opts dataOptions) documentData {
	raw := rec.Lower()
	data := make(map[string]any, len(raw)+len(knownColumns)+len(imageColumns))
	for _, k := range knownColumns {
		data[k] = ""
	}
	for _, k := range imageColumns {
		data[k] = ""
	}
	for k, v := range raw {
		data[k] = v
	}

	nameParts := splitParts(rec.Get("nom_cog"))
	courseParts := splitParts(rec.Get("corsolau"))
	if !opts.rawNames {
		for i := range nameParts {
			nameParts[i] = FormatPersonName(nameParts[i])
		}
	}
	data["nom_cog"] = lineBreaks(nameParts)
	data["corsolau"] = lineBreaks(courseParts)

	province := strings.TrimSpace(rec.Get("provnas"))
	birthPlace := composeBirthPlace(
		strings.TrimSpace(rec.Get("luogonas")),
		province,
		strings.TrimSpace(rec.Get("statnas")),
		opts.rawNames,
	)
	if !opts.rawNames {
		province = formatProvince(province)
	}
	data["luogonas"] = birthPlace

	module := strings.TrimSpace(rec.Get("modulo"))
	data["modulo"] = module
	data["lode"] = strings.ToUpper(strings.TrimSpace(rec.Get("lode")))

	footer := opts.footer
	if footer == "" {
		footer = DefaultFooter
	}
	data["testo_footer_fisso"] = footer

	for _, key := range imageColumns {
		if v := raw[key]; v != "" && !strings.HasSuffix(v, ".png") {
			data[key] = v + ".png"
		}
	}

	displayName := strings.Join(nameParts, " ")

	cover := map[string]any{
		"corso_laurea":      data["corsolau"],
		"nome_studente":     data["nom_cog"],
		"luogo_nascita":     birthPlace,
		"provincia_nascita": province,
		"data_nascita":      rec.Get("datanas"),
		"numero_protocollo": rec.Get("protocol"),
		"numero_diploma":    rec.Get("npergamena"),
		"genere_nato_nata":  strings.TrimSpace(rec.GetOr("sesso", defaultGender)),
		"firmad":            stringValue(data["firmad"]),
		"firmar":            stringValue(data["firmar"]),
		"firmap":            stringValue(data["firmap"]),
	}

	return documentData{
		Module:      module,
		DisplayName: displayName,
		FileBase:    cleanFileComponent(displayName),
		Diploma:     data,
		Cover:       cover,
	}
}

// splitParts splits a value on '|', the line break marker of the export
func splitParts(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func lineBreaks(parts []string) template.HTML {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = template.HTMLEscapeString(p)
	}
	return template.HTML(strings.Join(escaped, "<br>"))
}

func composeBirthPlace(place, province, state string, raw bool) string {
	if raw {
		parts := make([]string, 0, 3)
		for _, p := range []string{place, province, state} {
			if p != "" {
				parts = append(parts, p)
			}
		}
		return strings.Join(parts, " ")
	}

	out := FormatPlaceName(place)
	if province != "" {
		out += " (" + formatProvince(province) + ")"
	}
	if state != "" {
		if _, ok := homeCountry[strings.ToUpper(state)]; !ok {
			out += " (" + FormatPlaceName(state) + ")"
		}
	}
	return strings.TrimSpace(out)
}

// formatProvince keeps two-letter province codes upper-case
func formatProvince(province string) string {
	if len([]rune(province)) <= 2 {
		return strings.ToUpper(province)
	}
	return FormatPlaceName(province)
}

// cleanFileComponent turns a student name into a file name fragment
func cleanFileComponent(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch r {
		case ' ', '|':
			b.WriteRune('_')
		case '/', '\\', ':', '*', '?', '"', '<', '>':
		default:
			b.WriteRune(r)
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return defaultStudentName
	}
	return out
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}
