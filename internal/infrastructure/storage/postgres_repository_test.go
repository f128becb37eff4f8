package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ZipTales/internal/domain"
	"ZipTales/internal/ports"
)

var articleRowColumns = []string{
	"id", "external_id", "title", "summary", "content", "author", "source", "url", "category",
	"upvotes", "downvotes", "blockchain_verified", "credibility_score", "published_at", "updated_at",
}

func TestPostgresRepository_FindByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	id := uuid.New()
	published := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	score := 72

	mock.ExpectQuery(`SELECT id, external_id, (.+) FROM news_articles WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(articleRowColumns).AddRow(
			id, "ext-1", "Title", "Summary", "Body", "Jane", "BBC", "https://bbc.com/a", "world",
			10, 2, true, &score, published, published,
		))

	article, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, id, article.ID)
	assert.Equal(t, "BBC", article.Source)
	assert.Equal(t, 10, article.Upvotes)
	assert.True(t, article.BlockchainVerified)
	require.NotNil(t, article.CredibilityScore)
	assert.Equal(t, 72, *article.CredibilityScore)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_FindByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	id := uuid.New()

	mock.ExpectQuery(`FROM news_articles WHERE id = \$1`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.FindByID(context.Background(), id)
	assert.ErrorIs(t, err, ports.ErrArticleNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ListPage(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	now := time.Now().UTC()
	first, second := uuid.New(), uuid.New()

	rows := pgxmock.NewRows(articleRowColumns).
		AddRow(first, "ext-1", "One", "", "body one", "", "cnn", "", "", 1, 0, false, nil, now, now).
		AddRow(second, "ext-2", "Two", "sum two", "", "", "", "", "", 0, 0, false, nil, now, now)

	mock.ExpectQuery(`FROM news_articles WHERE id > \$1 ORDER BY id LIMIT 2`).
		WithArgs(uuid.Nil).
		WillReturnRows(rows)

	articles, err := repo.ListPage(context.Background(), uuid.Nil, 2)
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, first, articles[0].ID)
	assert.Nil(t, articles[0].CredibilityScore)
	assert.Equal(t, "sum two", articles[1].Body())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_KnownExternalIDs(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	ids := []string{"a", "b", "c"}

	mock.ExpectQuery(`SELECT external_id FROM news_articles WHERE external_id = ANY\(\$1\)`).
		WithArgs(ids).
		WillReturnRows(pgxmock.NewRows([]string{"external_id"}).AddRow("a").AddRow("c"))

	known, err := repo.KnownExternalIDs(context.Background(), ids)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"a": true, "c": true}, known)
	require.NoError(t, mock.ExpectationsWereMet())

	empty, err := repo.KnownExternalIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestPostgresRepository_Upsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	stored := uuid.New()
	score := 64
	article := domain.Article{
		ExternalID:       "https://example.org/a",
		Title:            "A",
		Source:           "example.org",
		CredibilityScore: &score,
		PublishedAt:      time.Now().UTC(),
	}

	mock.ExpectQuery(`INSERT INTO news_articles (.+) ON CONFLICT \(external_id\) DO UPDATE`).
		WithArgs(pgxmock.AnyArg(), article.ExternalID, article.Title, "", "", "", article.Source, "", "",
			false, &score, article.PublishedAt).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(stored))

	id, err := repo.Upsert(context.Background(), article)
	require.NoError(t, err)
	assert.Equal(t, stored, id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_SaveCredibilityScore(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	id := uuid.New()

	mock.ExpectExec(`UPDATE news_articles SET credibility_score = \$1, updated_at = NOW\(\) WHERE id = \$2`).
		WithArgs(83, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE news_articles`).
		WithArgs(10, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.NoError(t, repo.SaveCredibilityScore(context.Background(), id, 83))
	assert.ErrorIs(t, repo.SaveCredibilityScore(context.Background(), id, 10), ports.ErrArticleNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Migrate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS news_articles`).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	require.NoError(t, NewPostgresRepository(mock).Migrate(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
