package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paper-shelf/models"
	"paper-shelf/storage"
)

type paperFixture struct {
	papers  *PaperService
	files   *storage.FileStore
	adminID uint
	fieldID uint
}

func newPaperFixture(t *testing.T) paperFixture {
	t.Helper()
	db := newTestDB(t)
	files := newTestFiles(t)
	identity := NewIdentityService(testConfig(), db, files, testLogger())
	admin := createAccount(t, identity, "Root", "root@example.org", models.RoleAdmin)
	return paperFixture{
		papers:  NewPaperService(testConfig(), db, files, testLogger()),
		files:   files,
		adminID: admin.ID,
		fieldID: createField(t, db, "Computer Science"),
	}
}

func (f paperFixture) savePDF(t *testing.T) string {
	t.Helper()
	path, err := f.files.Save("draft.pdf", strings.NewReader("%PDF-1.4 content"))
	require.NoError(t, err)
	return path
}

func (f paperFixture) submit(t *testing.T, title string, keywords []string) *models.Paper {
	t.Helper()
	paper, err := f.papers.Submit(SubmitInput{
		Title:    title,
		Abstract: "An abstract.",
		FieldID:  f.fieldID,
		AdminID:  f.adminID,
		Path:     f.savePDF(t),
		Keywords: keywords,
	})
	require.NoError(t, err)
	return paper
}

func TestSubmit_RoundTrip(t *testing.T) {
	f := newPaperFixture(t)

	pubDate := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	paper, err := f.papers.Submit(SubmitInput{
		Title:           "Graph Embeddings",
		Abstract:        "On embeddings.",
		PublicationDate: &pubDate,
		FieldID:         f.fieldID,
		AdminID:         f.adminID,
		Path:            f.savePDF(t),
		Authors: []AuthorInput{
			{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.org", Country: "US"},
			{FirstName: "Alan", LastName: "Turing", Email: "alan@example.org", Country: "UK"},
		},
		Keywords: []string{"graphs", " embeddings ", ""},
	})
	require.NoError(t, err)

	detail, err := f.papers.Get(paper.ID)
	require.NoError(t, err)
	assert.Equal(t, "Graph Embeddings", detail.Title)
	assert.Equal(t, "Computer Science", detail.FieldName)
	assert.Equal(t, "Root", detail.AdminName)
	assert.Equal(t, "graphs, embeddings", detail.Keywords)
	require.Len(t, detail.Authors, 2)
	assert.Equal(t, "Hopper", detail.Authors[0].LastName)
	assert.Equal(t, "Turing", detail.Authors[1].LastName)

	var linkCount int64
	f.papers.DB.Model(&models.AuthorPaper{}).Where("paper_id = ?", paper.ID).Count(&linkCount)
	assert.EqualValues(t, 2, linkCount)
}

func TestSubmit_ReusesAuthorsByEmail(t *testing.T) {
	f := newPaperFixture(t)

	author := AuthorInput{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.org", Country: "US"}
	first, err := f.papers.Submit(SubmitInput{
		Title: "First", Abstract: "A.", FieldID: f.fieldID, AdminID: f.adminID,
		Path: f.savePDF(t), Authors: []AuthorInput{author},
	})
	require.NoError(t, err)
	second, err := f.papers.Submit(SubmitInput{
		Title: "Second", Abstract: "B.", FieldID: f.fieldID, AdminID: f.adminID,
		Path: f.savePDF(t), Authors: []AuthorInput{author},
	})
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	var authorCount int64
	f.papers.DB.Model(&models.Author{}).Count(&authorCount)
	assert.EqualValues(t, 1, authorCount)
}

func TestSubmit_ValidationRemovesFile(t *testing.T) {
	f := newPaperFixture(t)
	path := f.savePDF(t)

	_, err := f.papers.Submit(SubmitInput{
		Title: "", Abstract: "A.", FieldID: f.fieldID, AdminID: f.adminID, Path: path,
	})
	assert.Equal(t, KindValidation, KindOf(err))

	abs, ok := f.files.Abs(path)
	require.True(t, ok)
	assert.NoFileExists(t, abs)
}

func TestSubmit_MissingFile(t *testing.T) {
	f := newPaperFixture(t)

	_, err := f.papers.Submit(SubmitInput{
		Title: "T", Abstract: "A.", FieldID: f.fieldID, AdminID: f.adminID,
	})
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, "PDF file is required", MessageOf(err))
}

func TestList_Pagination(t *testing.T) {
	f := newPaperFixture(t)
	for i := 0; i < 5; i++ {
		f.submit(t, fmt.Sprintf("Paper %d", i), nil)
	}

	rows, pagination, err := f.papers.List(2, 2)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.EqualValues(t, 5, pagination.Total)
	assert.Equal(t, 3, pagination.TotalPages)
	assert.Equal(t, 2, pagination.Page)
}

func TestList_NewestFirst(t *testing.T) {
	f := newPaperFixture(t)

	older := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for title, date := range map[string]time.Time{"Old": older, "New": newer} {
		_, err := f.papers.Submit(SubmitInput{
			Title: title, Abstract: "A.", PublicationDate: &date,
			FieldID: f.fieldID, AdminID: f.adminID, Path: f.savePDF(t),
		})
		require.NoError(t, err)
	}

	rows, _, err := f.papers.List(1, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "New", rows[0].Title)
	assert.Equal(t, "Old", rows[1].Title)
}

func TestGet_NotFound(t *testing.T) {
	f := newPaperFixture(t)

	_, err := f.papers.Get(999)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestSearch(t *testing.T) {
	f := newPaperFixture(t)
	f.submit(t, "Neural Architectures", []string{"deep learning"})
	f.submit(t, "Protein Folding", []string{"biology"})

	rows, err := f.papers.Search("Neural", 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Neural Architectures", rows[0].Title)

	// Treffer über Schlagwörter, ohne Duplikate trotz Join.
	rows, err = f.papers.Search("deep", 10)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = f.papers.Search("   ", 10)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestUpdate_OverwritesMetadata(t *testing.T) {
	f := newPaperFixture(t)
	paper := f.submit(t, "Before", nil)
	otherField := createField(t, f.papers.DB, "Medicine")

	newDate := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, f.papers.Update(paper.ID, UpdateInput{
		Title:           "After",
		Abstract:        "Rewritten.",
		PublicationDate: newDate,
		FieldID:         otherField,
	}))

	detail, err := f.papers.Get(paper.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", detail.Title)
	assert.Equal(t, "Rewritten.", detail.Abstract)
	assert.Equal(t, "Medicine", detail.FieldName)

	err = f.papers.Update(999, UpdateInput{Title: "X"})
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestDelete_Cascade(t *testing.T) {
	f := newPaperFixture(t)
	paper := f.submit(t, "Doomed", []string{"k1", "k2"})

	abs, ok := f.files.Abs(paper.Path)
	require.True(t, ok)
	assert.FileExists(t, abs)

	require.NoError(t, f.papers.Delete(paper.ID))

	var keywordCount, linkCount int64
	f.papers.DB.Model(&models.PaperKeyword{}).Where("paper_id = ?", paper.ID).Count(&keywordCount)
	f.papers.DB.Model(&models.AuthorPaper{}).Where("paper_id = ?", paper.ID).Count(&linkCount)
	assert.EqualValues(t, 0, keywordCount)
	assert.EqualValues(t, 0, linkCount)
	assert.NoFileExists(t, abs)

	err := f.papers.Delete(paper.ID)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestDelete_ToleratesMissingFile(t *testing.T) {
	f := newPaperFixture(t)
	paper := f.submit(t, "Ghost", nil)

	require.NoError(t, f.files.Remove(paper.Path))
	assert.NoError(t, f.papers.Delete(paper.ID))
}
