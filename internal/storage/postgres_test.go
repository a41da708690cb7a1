package storage

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/paperhub/paperhub/internal/embedding"
	"github.com/paperhub/paperhub/internal/paper"
	"github.com/paperhub/paperhub/internal/vector"
)

var _ Store = (*PG)(nil)

var pgPaperCols = []string{
	"id", "arxiv_id", "title", "authors_json", "abstract", "category", "published",
	"pdf_url", "pdf_path", "embedding_model", "embedding_hash", "embedded_at",
	"created_at", "updated_at",
}

func newMockPG(t *testing.T) (*PG, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	pg := NewPG(db, testModel)
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		pg.Close()
	})
	return pg, mock
}

func TestPGSimilarByVector(t *testing.T) {
	pg, mock := newMockPG(t)
	query := planeVec(0)
	now := time.Now().UTC()

	cols := append(append([]string{}, pgPaperCols...), "similarity")
	rows := sqlmock.NewRows(cols).
		AddRow(int64(2), "2301.00002", "Near", `["A B"]`, "near text", "cs.CL", "2023-01-02",
			nil, nil, testModel, "h2", now, now, now, 0.995).
		AddRow(int64(1), nil, "Far", nil, nil, nil, nil,
			nil, nil, testModel, "h1", now, now, now, 0.42)

	mock.ExpectQuery(`1 - \(embedding <=> \$1::vector\) AS similarity`).
		WithArgs(vector.Format(query), testModel, pq.Array([]int64{7}), 5).
		WillReturnRows(rows)

	matches, err := pg.SimilarByVector(context.Background(), query, 5, []int64{7})
	if err != nil {
		t.Fatalf("SimilarByVector() error = %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].Paper.Title != "Near" || math.Abs(matches[0].Similarity-0.995) > 1e-12 {
		t.Errorf("matches[0] = %+v", matches[0])
	}
	if len(matches[0].Paper.Authors) != 1 || matches[0].Paper.Authors[0] != "A B" {
		t.Errorf("authors not decoded: %v", matches[0].Paper.Authors)
	}
	if matches[1].Paper.Title != "Far" || matches[1].Paper.Authors != nil {
		t.Errorf("matches[1] = %+v", matches[1])
	}
}

func TestPGSimilarByVectorNilExcludeSendsEmptyArray(t *testing.T) {
	pg, mock := newMockPG(t)
	query := planeVec(0.1)

	// A nil exclusion list must reach Postgres as '{}', never NULL, or
	// the NOT-ANY filter would drop every row.
	mock.ExpectQuery(`NOT \(id = ANY\(\$3\)\)`).
		WithArgs(vector.Format(query), testModel, pq.Array([]int64{}), 10).
		WillReturnRows(sqlmock.NewRows(append(append([]string{}, pgPaperCols...), "similarity")))

	matches, err := pg.SimilarByVector(context.Background(), query, 10, nil)
	if err != nil {
		t.Fatalf("SimilarByVector() error = %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("got %d matches, want 0", len(matches))
	}
}

func TestPGSimilarByVectorQueryDims(t *testing.T) {
	pg, _ := newMockPG(t)
	_, err := pg.SimilarByVector(context.Background(), vector.Vector{1, 2}, 10, nil)
	if !errors.Is(err, vector.ErrDimensionMismatch) {
		t.Errorf("error = %v, want ErrDimensionMismatch", err)
	}
}

func TestPGGetPaper(t *testing.T) {
	pg, mock := newMockPG(t)
	now := time.Now().UTC()
	v := planeVec(0.3)

	cols := append(append([]string{}, pgPaperCols...), "embedding")
	mock.ExpectQuery(`(?s)SELECT (.+) FROM papers WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(int64(3), "1706.03762", "Attention", `["V","S"]`, "abs", "cs.CL", "2017-06-12",
				nil, nil, testModel, "hash", now, now, now, vector.Format(v)))

	got, err := pg.GetPaper(context.Background(), 3)
	if err != nil {
		t.Fatalf("GetPaper() error = %v", err)
	}
	if got == nil || got.Title != "Attention" {
		t.Fatalf("GetPaper() = %+v", got)
	}
	if !got.HasVector() {
		t.Fatal("vector not loaded")
	}
	for i := range v {
		if math.Abs(got.Vector[i]-v[i]) > 1e-9 {
			t.Fatalf("vector[%d] = %v, want %v", i, got.Vector[i], v[i])
		}
	}
}

func TestPGGetPaperOtherModelVectorStaysUnloaded(t *testing.T) {
	pg, mock := newMockPG(t)
	now := time.Now().UTC()

	cols := append(append([]string{}, pgPaperCols...), "embedding")
	mock.ExpectQuery(`(?s)SELECT (.+) FROM papers WHERE id = \$1`).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(int64(4), nil, "Old", nil, nil, nil, nil, nil, nil,
				"nomic-embed-text", "hash", now, now, now, vector.Format(planeVec(0))))

	got, err := pg.GetPaper(context.Background(), 4)
	if err != nil {
		t.Fatalf("GetPaper() error = %v", err)
	}
	if got.HasVector() {
		t.Error("vector from another model should not load")
	}
	if got.VectorModel != "nomic-embed-text" {
		t.Errorf("VectorModel = %q", got.VectorModel)
	}
}

func TestPGGetPaperMissing(t *testing.T) {
	pg, mock := newMockPG(t)

	cols := append(append([]string{}, pgPaperCols...), "embedding")
	mock.ExpectQuery(`(?s)SELECT (.+) FROM papers WHERE id = \$1`).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows(cols))

	got, err := pg.GetPaper(context.Background(), 404)
	if err != nil {
		t.Fatalf("GetPaper() error = %v", err)
	}
	if got != nil {
		t.Errorf("GetPaper() = %+v, want nil", got)
	}
}

func TestPGCreatePaper(t *testing.T) {
	pg, mock := newMockPG(t)

	cols := append(append([]string{}, pgPaperCols...), "embedding")
	mock.ExpectQuery(`(?s)SELECT (.+) FROM papers WHERE arxiv_id = \$1`).
		WithArgs("2301.00001").
		WillReturnRows(sqlmock.NewRows(cols))
	mock.ExpectQuery(`(?s)INSERT INTO papers (.+) RETURNING id`).
		WithArgs(nullableString("2301.00001"), "New Paper", nullableString(`["A"]`),
			nullableString(""), nullableString("cs.LG"), nullableString("2023-01-01"),
			nullableString(""), nullableString(""), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	p := paper.Paper{
		ArxivID:   "2301.00001",
		Title:     "New Paper",
		Authors:   []string{"A"},
		Category:  "cs.LG",
		Published: "2023-01-01",
	}
	if err := pg.CreatePaper(context.Background(), &p); err != nil {
		t.Fatalf("CreatePaper() error = %v", err)
	}
	if p.ID != 42 {
		t.Errorf("p.ID = %d, want 42", p.ID)
	}
}

func TestPGCreatePaperDuplicate(t *testing.T) {
	pg, mock := newMockPG(t)
	now := time.Now().UTC()

	cols := append(append([]string{}, pgPaperCols...), "embedding")
	mock.ExpectQuery(`(?s)SELECT (.+) FROM papers WHERE arxiv_id = \$1`).
		WithArgs("2301.00001").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(int64(1), "2301.00001", "Existing", nil, nil, nil, nil, nil, nil,
				nil, nil, nil, now, now, nil))

	err := pg.CreatePaper(context.Background(), &paper.Paper{Title: "Copy", ArxivID: "2301.00001"})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("CreatePaper() error = %v, want ErrDuplicate", err)
	}
}

func TestPGSetPaperVector(t *testing.T) {
	pg, mock := newMockPG(t)
	v := planeVec(0.2)
	rec := embedding.Record{Vector: v, Model: testModel, TextHash: "abc"}

	mock.ExpectExec(`UPDATE papers`).
		WithArgs(pgvector.NewVector(toFloat32s(v)), testModel, "abc",
			sqlmock.AnyArg(), sqlmock.AnyArg(), int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := pg.SetPaperVector(context.Background(), 9, rec); err != nil {
		t.Fatalf("SetPaperVector() error = %v", err)
	}
}

func TestPGSetPaperVectorNotFound(t *testing.T) {
	pg, mock := newMockPG(t)
	rec := embedding.Record{Vector: planeVec(0), Model: testModel}

	mock.ExpectExec(`UPDATE papers`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := pg.SetPaperVector(context.Background(), 404, rec)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("SetPaperVector() error = %v, want ErrNotFound", err)
	}
}

func TestPGSetPaperVectorDims(t *testing.T) {
	pg, _ := newMockPG(t)
	err := pg.SetPaperVector(context.Background(), 1,
		embedding.Record{Vector: vector.Vector{1}, Model: testModel})
	if !errors.Is(err, vector.ErrDimensionMismatch) {
		t.Errorf("SetPaperVector() error = %v, want ErrDimensionMismatch", err)
	}
}

func TestPGListPapersBuildsFilters(t *testing.T) {
	pg, mock := newMockPG(t)

	mock.ExpectQuery(`(?s)category = \$1 AND (.+)published >= \$3 ORDER BY id DESC LIMIT \$4`).
		WithArgs("cs.CL", "toread", "2023-01-01", 5).
		WillReturnRows(sqlmock.NewRows(pgPaperCols))

	_, err := pg.ListPapers(context.Background(), Filters{
		Category: "cs.CL",
		Tag:      "toread",
		From:     "2023-01-01",
		Limit:    5,
	})
	if err != nil {
		t.Fatalf("ListPapers() error = %v", err)
	}
}

func TestPGSearchPapers(t *testing.T) {
	pg, mock := newMockPG(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`title ILIKE '%' \|\| \$1 \|\| '%'`).
		WithArgs("attention", 10).
		WillReturnRows(sqlmock.NewRows(pgPaperCols).
			AddRow(int64(1), nil, "Attention Is All You Need", nil, nil, nil, nil,
				nil, nil, nil, nil, nil, now, now))

	got, err := pg.SearchPapers(context.Background(), "attention", 10)
	if err != nil {
		t.Fatalf("SearchPapers() error = %v", err)
	}
	if len(got) != 1 || got[0].Title != "Attention Is All You Need" {
		t.Errorf("SearchPapers() = %+v", got)
	}
}

func TestPGRecordRead(t *testing.T) {
	pg, mock := newMockPG(t)

	mock.ExpectQuery(`SELECT 1 FROM papers WHERE id = \$1`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery(`(?s)INSERT INTO reading_history (.+) RETURNING id`).
		WithArgs(int64(2), paper.DefaultUser, sqlmock.AnyArg(), nullableRating(5),
			nullableString("great")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))

	e := paper.ReadingEntry{PaperID: 2, Rating: 5, Notes: "great"}
	if err := pg.RecordRead(context.Background(), &e); err != nil {
		t.Fatalf("RecordRead() error = %v", err)
	}
	if e.ID != 11 || e.UserID != paper.DefaultUser || e.ReadAt.IsZero() {
		t.Errorf("entry after record = %+v", e)
	}
}
