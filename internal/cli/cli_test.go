package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const trainText = "-DOCSTART-\tO\n\n" +
	"EU\tORG\nrejects\tO\nGerman\tMISC\ncall\tO\n\n" +
	"Peter\tPER\nsaid\tO\nEU\tORG\n\n"

func execute(t *testing.T, args ...string) string {
	t.Helper()
	c := New("test")
	var out bytes.Buffer
	c.rootCmd.SetOut(&out)
	c.rootCmd.SetErr(&out)
	c.rootCmd.SetArgs(append([]string{"-s"}, args...))
	if err := c.Run(); err != nil {
		t.Fatalf("nertag %s: %v\n%s", strings.Join(args, " "), err, out.String())
	}
	return out.String()
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCorpusSummarize(t *testing.T) {
	train := writeFile(t, t.TempDir(), "train.conll", trainText)
	out := execute(t, "corpus", "summarize", train)
	for _, want := range []string{"1 paragraphs", "2 sentences", "7 word tokens", "2 word tokens tagged with ORG"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCorpusSummarizeDataFolder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "train.conll", trainText)
	writeFile(t, dir, "dev.conll", "Paris\tLOC\n\n")
	out := execute(t, "corpus", "summarize", "--data-folder", dir)
	if !strings.Contains(out, "== train ==") || !strings.Contains(out, "== dev ==") {
		t.Errorf("output missing split headers:\n%s", out)
	}
}

func TestCorpusSample(t *testing.T) {
	train := writeFile(t, t.TempDir(), "train.conll", trainText)
	out := execute(t, "corpus", "sample", train, "--words", "--tag", "ORG", "--seed", "1")
	if got := strings.TrimSpace(out); got != "EU  EU" {
		t.Errorf("sampled words = %q, want %q", got, "EU  EU")
	}
	out = execute(t, "corpus", "sample", train, "--size", "1", "--seed", "3")
	if !strings.Contains(out, "/ORG") {
		t.Errorf("sampled sentence = %q", out)
	}
}

func TestVocabUnkify(t *testing.T) {
	train := writeFile(t, t.TempDir(), "train.conll", trainText)
	out := execute(t, "vocab", "unkify", train, train)
	want := "-DOCSTART-\tO\n\n" +
		"EU\tORG\n-UNK-\tO\n-UNK-\tMISC\n-UNK-\tO\n\n" +
		"-UNK-\tPER\n-UNK-\tO\nEU\tORG\n\n"
	if out != want {
		t.Errorf("unkify output:\n%q\nwant:\n%q", out, want)
	}
}

func TestVocabSave(t *testing.T) {
	dir := t.TempDir()
	train := writeFile(t, dir, "train.conll", trainText)
	outDir := filepath.Join(dir, "vocab")
	execute(t, "vocab", "save", train, outDir)
	data, err := os.ReadFile(filepath.Join(outDir, "words.tsv"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "-UNK-\t0\nEU\t1\n" {
		t.Errorf("words.tsv = %q", data)
	}
}

func TestVocabUnkifySavedTables(t *testing.T) {
	dir := t.TempDir()
	train := writeFile(t, dir, "train.conll", trainText)
	tables := filepath.Join(dir, "vocab")
	execute(t, "vocab", "save", train, tables)

	fitted := execute(t, "vocab", "unkify", train, train)
	loaded := execute(t, "vocab", "unkify", train, "--vocab-dir", tables)
	if loaded != fitted {
		t.Errorf("unkify with saved tables:\n%q\nwant:\n%q", loaded, fitted)
	}
}

func TestVocabUnkifyArgs(t *testing.T) {
	train := writeFile(t, t.TempDir(), "train.conll", trainText)
	for _, args := range [][]string{
		{"vocab", "unkify", train},
		{"vocab", "unkify", train, train, "--vocab-dir", "vocab"},
	} {
		c := New("test")
		var out bytes.Buffer
		c.rootCmd.SetOut(&out)
		c.rootCmd.SetErr(&out)
		c.rootCmd.SetArgs(append([]string{"-s"}, args...))
		if err := c.Run(); err == nil {
			t.Errorf("nertag %s: expected error", strings.Join(args, " "))
		}
	}
}

func TestTrainPredictEvaluate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "train.conll", trainText)
	model := filepath.Join(dir, "model.json")
	execute(t, "train", model, "--data-folder", dir, "--kind", "memo", "--min-count", "1")

	pred := filepath.Join(dir, "pred.conll")
	execute(t, "predict", filepath.Join(dir, "train.conll"), "--model", model, "-o", pred)
	data, err := os.ReadFile(pred)
	if err != nil {
		t.Fatal(err)
	}
	if want := "EU\tORG\nrejects\tO\nGerman\tMISC\ncall\tO\n\nPeter\tPER\nsaid\tO\nEU\tORG\n\n"; string(data) != want {
		t.Errorf("predictions = %q, want %q", data, want)
	}

	out := execute(t, "evaluate", filepath.Join(dir, "train.conll"), pred)
	if !strings.Contains(out, "Accuracy: 100.0% (7/7)") {
		t.Errorf("evaluate output:\n%s", out)
	}

	out = execute(t, "evaluate", filepath.Join(dir, "train.conll"), "--model", model, "--metric", "f1")
	if !strings.Contains(out, "overall") || strings.Contains(out, "recall") {
		t.Errorf("f1 report:\n%s", out)
	}
}

func TestEvaluateShowErrorsAndRecord(t *testing.T) {
	dir := t.TempDir()
	ref := writeFile(t, dir, "ref.conll", "Paris\tLOC\nis\tO\nnice\tO\n")
	hyp := writeFile(t, dir, "hyp.conll", "Paris\tLOC\nis\tO\nnice\tMISC\n")
	db := filepath.Join(dir, "runs.db")

	out := execute(t, "evaluate", ref, hyp, "--show-errors", "--confusion", "--record", db)
	if !strings.Contains(out, "Wrong tag: nice") {
		t.Errorf("missing mismatch line:\n%s", out)
	}
	if !strings.Contains(out, "Confusion matrix") {
		t.Errorf("missing confusion matrix:\n%s", out)
	}

	out = execute(t, "runs", "--db", db)
	if !strings.Contains(out, "ref.conll") || !strings.Contains(out, "hyp.conll") {
		t.Errorf("runs listing:\n%s", out)
	}
}

func TestEvaluateRequiresHypothesisOrModel(t *testing.T) {
	ref := writeFile(t, t.TempDir(), "ref.conll", "Paris\tLOC\n")
	c := New("test")
	var out bytes.Buffer
	c.rootCmd.SetOut(&out)
	c.rootCmd.SetErr(&out)
	c.rootCmd.SetArgs([]string{"-s", "evaluate", ref})
	if err := c.Run(); err == nil {
		t.Error("expected error without hypothesis or --model")
	}
}

func TestExtractPath(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"data/train.conll", filepath.Join("out", "train.conll"), false},
		{"data/", "out", false},
		{"data/../../etc/passwd", "", true},
	}
	for _, tt := range tests {
		got, err := extractPath("out", tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("extractPath(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("extractPath(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, src, "train.conll", trainText)
	writeFile(t, src, "dev.conll", "Paris\tLOC\n\n")

	archive := filepath.Join(dir, archiveTar)
	if err := writeArchive(archive, src); err != nil {
		t.Fatalf("writeArchive: %v", err)
	}
	f, err := os.Open(archive)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	dst := filepath.Join(dir, "dst")
	files, err := extractArchive(f, dst)
	if err != nil {
		t.Fatalf("extractArchive: %v", err)
	}
	if files != 2 {
		t.Errorf("files = %d, want 2", files)
	}
	data, err := os.ReadFile(filepath.Join(dst, "train.conll"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != trainText {
		t.Errorf("train.conll = %q, want %q", data, trainText)
	}
}
