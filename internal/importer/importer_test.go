package importer

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestFlexibleString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"string date", `"2023-05-12"`, "2023-05-12"},
		{"number year", `2023`, "2023"},
		{"null value", `null`, ""},
		{"float number", `2023.0`, "2023.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FlexibleString
			if err := json.Unmarshal([]byte(tt.input), &f); err != nil {
				t.Fatalf("UnmarshalJSON() error = %v", err)
			}
			if got := f.String(); got != tt.want {
				t.Errorf("String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFlexibleStringInvalidInput(t *testing.T) {
	for _, input := range []string{`[1,2,3]`, `{"key": "value"}`} {
		var f FlexibleString
		if err := json.Unmarshal([]byte(input), &f); err == nil {
			t.Errorf("UnmarshalJSON() expected error for input %s", input)
		}
	}
}

func TestFlexibleAuthors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"array", `["Alice Smith", "Bob Jones"]`, []string{"Alice Smith", "Bob Jones"}},
		{"array with blanks", `["Alice Smith", "", "  "]`, []string{"Alice Smith"}},
		{"semicolons", `"Alice Smith; Bob Jones"`, []string{"Alice Smith", "Bob Jones"}},
		{"and separator", `"Alice Smith and Bob Jones"`, []string{"Alice Smith", "Bob Jones"}},
		{"commas", `"Alice Smith, Bob Jones"`, []string{"Alice Smith", "Bob Jones"}},
		{"single name", `"Alice Smith"`, []string{"Alice Smith"}},
		{"null", `null`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FlexibleAuthors
			if err := json.Unmarshal([]byte(tt.input), &f); err != nil {
				t.Fatalf("UnmarshalJSON() error = %v", err)
			}
			if !reflect.DeepEqual([]string(f), tt.want) {
				t.Errorf("authors = %v, want %v", f, tt.want)
			}
		})
	}
}

func TestSplitAuthorList(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"Alice Smith; Bob Jones", []string{"Alice Smith", "Bob Jones"}},
		{"Alice Smith and Bob Jones", []string{"Alice Smith", "Bob Jones"}},
		{"Alice Smith, Bob Jones", []string{"Alice Smith", "Bob Jones"}},
		{"Alice Smith", []string{"Alice Smith"}},
		{"  ", []string{}},
	}
	for _, tt := range tests {
		if got := SplitAuthorList(tt.input); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitAuthorList(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParsePapersValidEntry(t *testing.T) {
	data := []byte(`[{
		"arxiv_id": "2301.12345",
		"title": "  Attention  Is All\n You Need  ",
		"authors": ["Ashish Vaswani", "Noam Shazeer"],
		"abstract": "The dominant sequence transduction models...",
		"category": "cs.LG",
		"published": "2023-01-30",
		"pdf_url": "https://arxiv.org/pdf/2301.12345"
	}]`)

	papers, errs := ParsePapers(data)
	if len(errs) > 0 {
		t.Fatalf("ParsePapers() returned errors: %v", errs)
	}
	if len(papers) != 1 {
		t.Fatalf("ParsePapers() returned %d papers, want 1", len(papers))
	}

	p := papers[0]
	if p.ArxivID != "2301.12345" {
		t.Errorf("ArxivID = %v, want 2301.12345", p.ArxivID)
	}
	if p.Title != "Attention Is All You Need" {
		t.Errorf("Title = %q, want cleaned title", p.Title)
	}
	if len(p.Authors) != 2 || p.Authors[0] != "Ashish Vaswani" {
		t.Errorf("Authors = %v", p.Authors)
	}
	if p.Category != "cs.LG" {
		t.Errorf("Category = %v, want cs.LG", p.Category)
	}
	if p.Published != "2023-01-30" {
		t.Errorf("Published = %v, want 2023-01-30", p.Published)
	}
}

func TestParsePapersAuthorsAsString(t *testing.T) {
	data := []byte(`[{
		"title": "Single String Authors",
		"authors": "Alice Smith and Bob Jones"
	}]`)

	papers, errs := ParsePapers(data)
	if len(errs) > 0 {
		t.Fatalf("ParsePapers() returned errors: %v", errs)
	}
	want := []string{"Alice Smith", "Bob Jones"}
	if !reflect.DeepEqual(papers[0].Authors, want) {
		t.Errorf("Authors = %v, want %v", papers[0].Authors, want)
	}
}

func TestParsePapersArxivIDFromURL(t *testing.T) {
	data := []byte(`[{
		"title": "No Explicit ID",
		"pdf_url": "https://arxiv.org/pdf/2106.09685v2"
	}]`)

	papers, errs := ParsePapers(data)
	if len(errs) > 0 {
		t.Fatalf("ParsePapers() returned errors: %v", errs)
	}
	if papers[0].ArxivID != "2106.09685v2" {
		t.Errorf("ArxivID = %v, want 2106.09685v2 from pdf_url", papers[0].ArxivID)
	}
}

func TestParsePapersArxivIDAsURL(t *testing.T) {
	data := []byte(`[{
		"title": "URL In ID Field",
		"arxiv_id": "https://arxiv.org/abs/2301.12345"
	}]`)

	papers, errs := ParsePapers(data)
	if len(errs) > 0 {
		t.Fatalf("ParsePapers() returned errors: %v", errs)
	}
	if papers[0].ArxivID != "2301.12345" {
		t.Errorf("ArxivID = %v, want 2301.12345", papers[0].ArxivID)
	}
}

func TestParsePapersInvalidArxivID(t *testing.T) {
	data := []byte(`[{"title": "Bad ID", "arxiv_id": "not-an-id"}]`)

	papers, errs := ParsePapers(data)
	if len(papers) != 0 {
		t.Errorf("ParsePapers() returned papers for invalid id: %+v", papers)
	}
	if len(errs) != 1 {
		t.Fatalf("ParsePapers() returned %d errors, want 1", len(errs))
	}
}

func TestParsePapersMissingTitle(t *testing.T) {
	data := []byte(`[{"arxiv_id": "2301.12345", "authors": ["A"]}]`)

	papers, errs := ParsePapers(data)
	if len(papers) != 0 {
		t.Errorf("ParsePapers() accepted entry without title: %+v", papers)
	}
	if len(errs) != 1 {
		t.Fatalf("ParsePapers() returned %d errors, want 1", len(errs))
	}
}

func TestParsePapersPartialErrors(t *testing.T) {
	data := []byte(`[
		{"title": "Valid One", "arxiv_id": "2301.00001"},
		{"title": "", "arxiv_id": "2301.00002"},
		{"title": "Valid Two", "arxiv_id": "2301.00003"}
	]`)

	papers, errs := ParsePapers(data)
	if len(papers) != 2 {
		t.Errorf("ParsePapers() returned %d valid papers, want 2", len(papers))
	}
	if len(errs) != 1 {
		t.Errorf("ParsePapers() returned %d errors, want 1", len(errs))
	}
	if len(papers) == 2 && (papers[0].ArxivID != "2301.00001" || papers[1].ArxivID != "2301.00003") {
		t.Errorf("valid papers = %v, %v", papers[0].ArxivID, papers[1].ArxivID)
	}
}

func TestParsePapersJSONLines(t *testing.T) {
	data := []byte(`{"title": "First Paper", "arxiv_id": "2301.00001"}
{"title": "Second Paper", "arxiv_id": "2301.00002"}
`)

	papers, errs := ParsePapers(data)
	if len(errs) > 0 {
		t.Fatalf("ParsePapers() returned errors: %v", errs)
	}
	if len(papers) != 2 {
		t.Fatalf("ParsePapers() returned %d papers, want 2", len(papers))
	}
	if papers[0].ArxivID != "2301.00001" || papers[1].ArxivID != "2301.00002" {
		t.Errorf("papers = %v, %v", papers[0].ArxivID, papers[1].ArxivID)
	}
}

func TestParsePapersInvalidJSON(t *testing.T) {
	papers, errs := ParsePapers([]byte(`not valid json`))
	if len(papers) != 0 || len(errs) != 1 {
		t.Errorf("ParsePapers() = %d papers, %d errors; want 0 papers, 1 error", len(papers), len(errs))
	}
}

func TestParsePapersEmptyArray(t *testing.T) {
	papers, errs := ParsePapers([]byte(`[]`))
	if len(errs) > 0 {
		t.Fatalf("ParsePapers() returned errors: %v", errs)
	}
	if len(papers) != 0 {
		t.Errorf("ParsePapers() returned %d papers, want 0", len(papers))
	}
}

func TestParsePapersNumericPublished(t *testing.T) {
	data := []byte(`[{"title": "Year Only", "published": 2021}]`)

	papers, errs := ParsePapers(data)
	if len(errs) > 0 {
		t.Fatalf("ParsePapers() returned errors: %v", errs)
	}
	if papers[0].Published != "2021" {
		t.Errorf("Published = %v, want 2021", papers[0].Published)
	}
}
