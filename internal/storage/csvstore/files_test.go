package csvstore

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/yigit/ssis/internal/app/models"
)

func TestEncodeWritesBOMAndHeader(t *testing.T) {
	var buf bytes.Buffer
	schema := models.SchemaFor(models.EntityCollege)
	if err := Encode(&buf, schema, [][]string{{"CCS", "College of Computer Studies"}}); err != nil {
		t.Fatalf("encode: %v", err)
	}

	want := "\xef\xbb\xbfCollege Code,College Name\nCCS,College of Computer Studies\n"
	if buf.String() != want {
		t.Fatalf("encoded = %q, want %q", buf.String(), want)
	}
}

func TestDecode(t *testing.T) {
	schema := models.SchemaFor(models.EntityProgram)

	tests := []struct {
		name  string
		input string
		want  [][]string
	}{
		{
			name:  "with byte-order mark",
			input: "\xef\xbb\xbfProgram Code,Program Name,College\nBSCS,Computer Science,CCS\n",
			want:  [][]string{{"BSCS", "Computer Science", "CCS"}},
		},
		{
			name:  "without byte-order mark",
			input: "Program Code,Program Name,College\nBSCS,Computer Science,NULL\n",
			want:  [][]string{{"BSCS", "Computer Science", "NULL"}},
		},
		{
			name:  "columns in another order with padding",
			input: "College , Program Code,Program Name\r\n CCS ,BSCS,Computer Science\r\n",
			want:  [][]string{{"BSCS", "Computer Science", "CCS"}},
		},
		{
			name:  "missing column reads empty",
			input: "Program Code,Program Name\nBSCS,Computer Science\n",
			want:  [][]string{{"BSCS", "Computer Science", ""}},
		},
		{
			name:  "blank keys are skipped",
			input: "Program Code,Program Name,College\n,Nothing,\n\nBSIT,Information Technology,CCS\n",
			want:  [][]string{{"BSIT", "Information Technology", "CCS"}},
		},
		{
			name:  "empty file",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(strings.NewReader(tt.input), schema)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("rows = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeRequiresKeyColumn(t *testing.T) {
	_, err := Decode(strings.NewReader("Name\nfoo\n"), models.SchemaFor(models.EntityCollege))
	if err == nil {
		t.Fatal("expected an error for a header without the key column")
	}
}

func TestWriteFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.csv")
	schema := models.SchemaFor(models.EntityStudent)
	rows := [][]string{
		{"2023-0002", "Ben", "Cruz", "1", "Male", "BSIT"},
		{"2023-0001", "Ana, Jr", "Reyes", "2", "Female", "NULL"},
	}

	if err := WriteFile(path, schema, rows); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadFile(path, schema)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(got, rows) {
		t.Fatalf("rows = %q, want %q", got, rows)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read raw: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\xef\xbb\xbfID Number,")) {
		t.Fatalf("file does not start with BOM and header: %q", data)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temporary files left behind: %v", entries)
	}
}

func TestReadFileMissing(t *testing.T) {
	rows, err := ReadFile(filepath.Join(t.TempDir(), "nope.csv"), models.SchemaFor(models.EntityCollege))
	if err != nil {
		t.Fatalf("read missing file: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("rows = %v, want none", rows)
	}
}
