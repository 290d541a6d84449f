package drive

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"
)

type fakeDrive struct {
	files    []*File
	contents map[string]string
	failID   string
}

func (f *fakeDrive) ListFiles(_ context.Context, folderID string) ([]*File, error) {
	if folderID == "missing" {
		return nil, errors.New("folder not found")
	}
	return f.files, nil
}

func (f *fakeDrive) DownloadFile(_ context.Context, file *File, w io.Writer) error {
	if file.ID == f.failID {
		return errors.New("quota exceeded")
	}
	_, err := io.WriteString(w, f.contents[file.ID])
	return err
}

func TestSourceInputs(t *testing.T) {
	api := &fakeDrive{
		files: []*File{
			{ID: "3", Name: "Outbound 235.xlsx", MimeType: xlsxMimeType},
			{ID: "1", Name: "complaints.csv", MimeType: "text/csv"},
			{ID: "2", Name: "Plant master", MimeType: spreadsheetMimeType},
			{ID: "4", Name: "slides.pdf", MimeType: "application/pdf"},
		},
		contents: map[string]string{"1": "a", "2": "b", "3": "c"},
	}

	inputs, err := NewSource(api, zerolog.Nop()).Inputs(context.Background(), "folder")
	if err != nil {
		t.Fatal(err)
	}
	want := []struct{ name, data string }{
		{"Outbound 235.xlsx", "c"},
		{"Plant master.xlsx", "b"},
		{"complaints.csv", "a"},
	}
	if len(inputs) != len(want) {
		t.Fatalf("got %d inputs: %+v", len(inputs), inputs)
	}
	for i, w := range want {
		if inputs[i].Name != w.name || string(inputs[i].Data) != w.data {
			t.Errorf("input %d = %s/%q, want %s/%q", i, inputs[i].Name, inputs[i].Data, w.name, w.data)
		}
	}
}

func TestSourceErrors(t *testing.T) {
	api := &fakeDrive{files: []*File{{ID: "1", Name: "complaints.csv"}}, failID: "1"}
	src := NewSource(api, zerolog.Nop())

	if _, err := src.Inputs(context.Background(), "folder"); err == nil {
		t.Fatal("expected download error")
	}
	if _, err := src.Inputs(context.Background(), "missing"); err == nil {
		t.Fatal("expected list error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.Inputs(ctx, "folder"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}
