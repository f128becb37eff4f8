package storage

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"ZipTales/internal/domain"
	"ZipTales/internal/ports"
)

const articlesTable = "news_articles"

//go:embed schema.sql
var schemaSQL string

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var articleColumns = []string{
	"id",
	"external_id",
	"title",
	"COALESCE(summary, '')",
	"COALESCE(content, '')",
	"COALESCE(author, '')",
	"COALESCE(source, '')",
	"COALESCE(url, '')",
	"COALESCE(category, '')",
	"upvotes",
	"downvotes",
	"blockchain_verified",
	"credibility_score",
	"published_at",
	"updated_at",
}

// PostgresRepository persists articles and their credibility scores into Postgres.
type PostgresRepository struct {
	db DB
	sb sq.StatementBuilderType
}

var _ ports.ArticleRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a pgx pool (or any DB implementation).
func NewPostgresRepository(db DB) *PostgresRepository {
	return &PostgresRepository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Migrate creates the articles table when it does not exist yet.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// FindByID loads a single article or returns ports.ErrArticleNotFound.
func (r *PostgresRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.Article, error) {
	query, args, err := r.sb.Select(articleColumns...).
		From(articlesTable).
		Where(sq.Expr("id = ?", id)).
		ToSql()
	if err != nil {
		return domain.Article{}, fmt.Errorf("build find query: %w", err)
	}

	article, err := scanArticle(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Article{}, ports.ErrArticleNotFound
	}
	if err != nil {
		return domain.Article{}, fmt.Errorf("find article %s: %w", id, err)
	}
	return article, nil
}

// ListPage returns up to limit articles ordered by ID, strictly after the given ID.
func (r *PostgresRepository) ListPage(ctx context.Context, after uuid.UUID, limit int) ([]domain.Article, error) {
	if limit <= 0 {
		return nil, nil
	}

	query, args, err := r.sb.Select(articleColumns...).
		From(articlesTable).
		Where(sq.Expr("id > ?", after)).
		OrderBy("id").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build page query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query page: %w", err)
	}
	defer rows.Close()

	articles := make([]domain.Article, 0, limit)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return articles, nil
}

// KnownExternalIDs returns the subset of ids that are already stored.
func (r *PostgresRepository) KnownExternalIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	if len(ids) == 0 {
		return map[string]bool{}, nil
	}

	query, args, err := r.sb.Select("external_id").
		From(articlesTable).
		Where(sq.Expr("external_id = ANY(?)", ids)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build known query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query known: %w", err)
	}
	defer rows.Close()

	result := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		result[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return result, nil
}

// Upsert inserts or refreshes an article keyed by its external ID and returns the stored ID.
func (r *PostgresRepository) Upsert(ctx context.Context, article domain.Article) (uuid.UUID, error) {
	id := article.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	query, args, err := r.sb.Insert(articlesTable).
		Columns("id", "external_id", "title", "summary", "content", "author", "source", "url",
			"category", "blockchain_verified", "credibility_score", "published_at").
		Values(id, article.ExternalID, article.Title, article.Summary, article.Content, article.Author,
			article.Source, article.URL, article.Category, article.BlockchainVerified,
			article.CredibilityScore, article.PublishedAt).
		Suffix(`ON CONFLICT (external_id) DO UPDATE
              SET title = EXCLUDED.title,
                  summary = EXCLUDED.summary,
                  content = EXCLUDED.content,
                  credibility_score = EXCLUDED.credibility_score,
                  updated_at = NOW()
              RETURNING id`).
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("build upsert: %w", err)
	}

	var stored uuid.UUID
	if err := r.db.QueryRow(ctx, query, args...).Scan(&stored); err != nil {
		return uuid.Nil, fmt.Errorf("upsert article %s: %w", article.ExternalID, err)
	}
	return stored, nil
}

// SaveCredibilityScore writes credibility_score onto an existing article.
func (r *PostgresRepository) SaveCredibilityScore(ctx context.Context, id uuid.UUID, score int) error {
	query, args, err := r.sb.Update(articlesTable).
		Set("credibility_score", score).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Expr("id = ?", id)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build score update: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("save credibility score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrArticleNotFound
	}
	return nil
}

func scanArticle(row pgx.Row) (domain.Article, error) {
	var a domain.Article
	err := row.Scan(
		&a.ID, &a.ExternalID, &a.Title, &a.Summary, &a.Content, &a.Author, &a.Source, &a.URL,
		&a.Category, &a.Upvotes, &a.Downvotes, &a.BlockchainVerified, &a.CredibilityScore,
		&a.PublishedAt, &a.UpdatedAt,
	)
	return a, err
}
