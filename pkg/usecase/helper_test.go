package usecase_test

import (
	"bytes"
	"context"
	"html/template"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/pergamene/pergamene/pkg/domain/interfaces"
	"github.com/pergamene/pergamene/pkg/domain/model"
	"github.com/pergamene/pergamene/pkg/repository/memory"
	"github.com/pergamene/pergamene/pkg/usecase"
)

const sampleData = preamble +
	"NOM_COG^MODULO^PROTOCOL^CORSOLAU^DATALAUR^MATRI^CLASSE\n" +
	"MARIO ROSSI^forml27v7^16828/2025^SCIENZE|AGRARIE^2025^A123^LM-69\n" +
	"ANNA BIANCHI^forml27v7^16829/2025^SCIENZE AGRARIE^2025^A124^LM-69\n" +
	"LUCA VERDI^unknown^16830/2025^SCIENZE AGRARIE^2025^A125^LM-69\n"

var fixedNow = time.Date(2025, 7, 15, 9, 5, 30, 0, time.UTC)

type fakeDocs struct {
	modules map[string]bool
	failFor string
}

func (d *fakeDocs) HasModule(module string) bool {
	return d.modules[module]
}

func (d *fakeDocs) RenderDiploma(_ context.Context, module string, data map[string]any) ([]byte, error) {
	name := stringOf(data["nom_cog"])
	if d.failFor != "" && name == d.failFor {
		return nil, goerr.New("template failure")
	}
	return []byte("<html>diploma " + module + " " + name + "</html>"), nil
}

func (d *fakeDocs) RenderCover(_ context.Context, data map[string]any) ([]byte, error) {
	return []byte("<html>camicia " + stringOf(data["nome_studente"]) + "</html>"), nil
}

func stringOf(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case template.HTML:
		return string(s)
	}
	return ""
}

func usecaseInput(faculty, data string) interfaces.GenerateInput {
	return interfaces.GenerateInput{Faculty: faculty, FileName: "export.txt", Data: []byte(data)}
}

type fakePDF struct {
	mu    sync.Mutex
	calls int
}

func (p *fakePDF) RenderPDF(_ context.Context, html []byte) ([]byte, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	return append([]byte("%PDF-1.4\n"), html...), nil
}

type fakeMerger struct {
	fail   bool
	inputs [][]string
}

func (m *fakeMerger) Merge(_ context.Context, inputs []string, output string) error {
	if m.fail {
		return goerr.New("merge failure")
	}
	m.inputs = append(m.inputs, inputs)
	var buf bytes.Buffer
	for _, in := range inputs {
		data, err := os.ReadFile(in)
		if err != nil {
			return err
		}
		buf.Write(data)
	}
	return os.WriteFile(output, buf.Bytes(), 0600)
}

type fixture struct {
	uc     *usecase.BatchUseCase
	repo   *memory.BatchRepository
	docs   *fakeDocs
	pdf    *fakePDF
	merger *fakeMerger
}

func newFixture(t *testing.T, opts ...usecase.Option) *fixture {
	t.Helper()

	f := &fixture{
		repo:   memory.NewBatchRepository(),
		docs:   &fakeDocs{modules: map[string]bool{"forml27v7": true, "forml1v7": true}},
		pdf:    &fakePDF{},
		merger: &fakeMerger{},
	}

	base := []usecase.Option{
		usecase.WithTempRoot(t.TempDir()),
		usecase.WithCleanupDelay(time.Hour),
		usecase.WithClock(func() time.Time { return fixedNow }),
	}
	f.uc = usecase.NewBatch(f.repo, f.docs, f.pdf, f.merger, append(base, opts...)...)
	t.Cleanup(f.uc.Close)
	return f
}

func (f *fixture) generate(t *testing.T, data string) *model.Batch {
	t.Helper()
	batch, err := f.uc.Generate(context.Background(), usecaseInput("Scienze Agrarie", data))
	gt.NoError(t, err)
	return batch
}
