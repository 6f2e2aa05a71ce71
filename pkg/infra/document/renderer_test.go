package document_test

import (
	"context"
	"html/template"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/pergamene/pergamene/pkg/infra/document"
)

func diplomaData() map[string]any {
	return map[string]any{
		"nom_cog":            template.HTML("Mario<br>Rossi"),
		"corsolau":           template.HTML("Scienze Biologiche"),
		"luogonas":           "Viterbo (VT)",
		"datanas":            "01/02/2000",
		"datalaur":           "15/07/2024",
		"sesso":              "nato",
		"classe":             "L-13",
		"voto":               "110/110",
		"lode":               "S",
		"protocol":           "16828/1",
		"npergamena":         "1234",
		"testo_footer_fisso": "footer text",
		"logo1":              "logo_ateneo.png",
		"logo2":              "",
		"logo3":              "",
		"firmar":             "firma_rettore.png",
		"firmap":             "",
		"firmad":             "",
	}
}

func TestRenderer_Embedded(t *testing.T) {
	ctx := context.Background()
	r, err := document.New()
	gt.NoError(t, err)

	t.Run("registers every module of the export", func(t *testing.T) {
		for _, module := range []string{
			"forml01v7", "forml01v7tuscia", "forml1v7", "forml2v7", "forml3v7", "forml4v7",
			"forml23v7", "forml27v7", "forml28v7", "forml28v7A", "forml29v7",
			"memoriastudi", "memorialaureamag", "memorialaureatri",
		} {
			gt.True(t, r.HasModule(module))
		}
		gt.A(t, r.Modules()).Length(14)
		gt.V(t, r.HasModule("forml99v7")).Equal(false)
		gt.V(t, r.HasModule("")).Equal(false)
	})

	t.Run("renders diploma with trusted line breaks and escaped text", func(t *testing.T) {
		data := diplomaData()
		data["luogonas"] = "<script>alert(1)</script>"

		html, err := r.RenderDiploma(ctx, "forml1v7", data)
		gt.NoError(t, err)
		out := string(html)
		gt.String(t, out).Contains("DIPLOMA DI LAUREA")
		gt.String(t, out).Contains("Mario<br>Rossi")
		gt.String(t, out).Contains("e lode")
		gt.String(t, out).Contains("logo_ateneo.png")
		gt.String(t, out).Contains("footer text")
		gt.String(t, out).NotContains("<script>")
	})

	t.Run("master degree template", func(t *testing.T) {
		html, err := r.RenderDiploma(ctx, "forml28v7A", diplomaData())
		gt.NoError(t, err)
		gt.String(t, string(html)).Contains("LAUREA MAGISTRALE")
	})

	t.Run("unknown module fails", func(t *testing.T) {
		_, err := r.RenderDiploma(ctx, "unknown", diplomaData())
		gt.Error(t, err)
	})

	t.Run("renders cover sheet", func(t *testing.T) {
		html, err := r.RenderCover(ctx, map[string]any{
			"corso_laurea":      template.HTML("Scienze<br>Biologiche"),
			"nome_studente":     template.HTML("Mario Rossi"),
			"luogo_nascita":     "Viterbo (VT)",
			"provincia_nascita": "VT",
			"data_nascita":      "01/02/2000",
			"numero_protocollo": "16828/1",
			"numero_diploma":    "1234",
			"genere_nato_nata":  "nato",
			"firmad":            "",
			"firmar":            "firma_rettore.png",
			"firmap":            "",
		})
		gt.NoError(t, err)
		out := string(html)
		gt.String(t, out).Contains("CAMICIA PERGAMENA")
		gt.String(t, out).Contains("16828/1")
		gt.String(t, out).Contains("Scienze<br>Biologiche")
	})
}

func TestRenderer_CustomDir(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	write := func(name, content string) {
		gt.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0600))
	}
	write("registry.toml", "cover = \"cover.html\"\n[modules]\ncustom = \"custom.html\"\n")
	write("cover.html", `<p>{{.nome_studente}}</p>`)
	write("custom.html", `<h1>{{.nom_cog}}</h1>`)

	r, err := document.New(document.WithDir(dir))
	gt.NoError(t, err)
	gt.True(t, r.HasModule("custom"))
	gt.V(t, r.HasModule("forml1v7")).Equal(false)

	html, err := r.RenderDiploma(ctx, "custom", map[string]any{"nom_cog": "Anna Bianchi"})
	gt.NoError(t, err)
	gt.String(t, string(html)).Equal("<h1>Anna Bianchi</h1>")
}

func TestRenderer_InvalidRegistry(t *testing.T) {
	t.Run("missing registry", func(t *testing.T) {
		_, err := document.New(document.WithDir(t.TempDir()))
		gt.Error(t, err)
	})

	t.Run("missing cover", func(t *testing.T) {
		dir := t.TempDir()
		gt.NoError(t, os.WriteFile(filepath.Join(dir, "registry.toml"), []byte("[modules]\na = \"a.html\"\n"), 0600))
		_, err := document.New(document.WithDir(dir))
		gt.Error(t, err)
	})

	t.Run("template file missing", func(t *testing.T) {
		dir := t.TempDir()
		gt.NoError(t, os.WriteFile(filepath.Join(dir, "registry.toml"), []byte("cover = \"cover.html\"\n"), 0600))
		_, err := document.New(document.WithDir(dir))
		gt.Error(t, err)
	})

	t.Run("broken toml", func(t *testing.T) {
		dir := t.TempDir()
		gt.NoError(t, os.WriteFile(filepath.Join(dir, "registry.toml"), []byte("cover = \n[[["), 0600))
		_, err := document.New(document.WithDir(dir))
		gt.Error(t, err)
	})
}
