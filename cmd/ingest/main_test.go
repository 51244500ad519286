package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/iconidentify/learnvid/internal/classifier"
	"github.com/iconidentify/learnvid/internal/config"
	"github.com/iconidentify/learnvid/internal/domain"
)

func TestParseMatrix(t *testing.T) {
	cls := classifier.NewDefault()
	cfg := config.IngestionConfig{
		Subjects:    []string{"mathematics", "science"},
		ClassLevels: []string{"1-3", "4-6"},
	}

	tests := []struct {
		name        string
		subjects    string
		classLevels string
		want        []domain.MatrixCell
		wantErr     bool
	}{
		{name: "no flags uses configured matrix", want: nil},
		{
			name:     "subjects only",
			subjects: "maths",
			want: []domain.MatrixCell{
				{Subject: "mathematics", ClassLevel: "1-3"},
				{Subject: "mathematics", ClassLevel: "4-6"},
			},
		},
		{
			name:        "class levels only",
			classLevels: "class 8",
			want: []domain.MatrixCell{
				{Subject: "mathematics", ClassLevel: "7-8"},
				{Subject: "science", ClassLevel: "7-8"},
			},
		},
		{
			name:        "both with spaces",
			subjects:    " Science , ",
			classLevels: "9-10, 11",
			want: []domain.MatrixCell{
				{Subject: "science", ClassLevel: "9-10"},
				{Subject: "science", ClassLevel: "11-12"},
			},
		},
		{name: "bad level", classLevels: "toddler", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseMatrix(cls, tt.subjects, tt.classLevels, cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("cell[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	report := &domain.IngestionReport{RunID: "run-1", Kind: domain.JobKindSweep, Validated: 3}

	if err := printJSON(&buf, report); err != nil {
		t.Fatalf("printJSON: %v", err)
	}

	var got domain.IngestionReport
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if got.RunID != "run-1" || got.Validated != 3 {
		t.Errorf("got %+v", got)
	}
}
