package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"ZipTales/internal/credibility"
	"ZipTales/internal/domain"
)

type mockRepository struct{ mock.Mock }

func (m *mockRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.Article, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Article), args.Error(1)
}

func (m *mockRepository) ListPage(ctx context.Context, after uuid.UUID, limit int) ([]domain.Article, error) {
	args := m.Called(ctx, after, limit)
	return args.Get(0).([]domain.Article), args.Error(1)
}

func (m *mockRepository) KnownExternalIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[string]bool), args.Error(1)
}

func (m *mockRepository) Upsert(ctx context.Context, article domain.Article) (uuid.UUID, error) {
	args := m.Called(ctx, article)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *mockRepository) SaveCredibilityScore(ctx context.Context, id uuid.UUID, score int) error {
	return m.Called(ctx, id, score).Error(0)
}

type mockCache struct{ mock.Mock }

func (m *mockCache) Get(ctx context.Context, key string) (credibility.Analysis, bool, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(credibility.Analysis), args.Bool(1), args.Error(2)
}

func (m *mockCache) Set(ctx context.Context, key string, analysis credibility.Analysis) error {
	return m.Called(ctx, key, analysis).Error(0)
}

type mockAttestor struct{ mock.Mock }

func (m *mockAttestor) IsAttested(ctx context.Context, content string) (bool, error) {
	args := m.Called(ctx, content)
	return args.Bool(0), args.Error(1)
}

type mockSource struct{ mock.Mock }

func (m *mockSource) Fetch(ctx context.Context, since time.Time) ([]domain.Article, error) {
	args := m.Called(ctx, since)
	return args.Get(0).([]domain.Article), args.Error(1)
}

type mockDriver struct{ mock.Mock }

func (m *mockDriver) Start(ctx context.Context, job func(time.Time)) error {
	return m.Called(ctx, job).Error(0)
}

func (m *mockDriver) Stop(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
