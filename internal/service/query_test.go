package service

import (
	"context"
	"errors"
	"testing"

	infMocks "tabqa/internal/inference/mocks"
	"tabqa/internal/model"
	"tabqa/internal/repository"
	repoMocks "tabqa/internal/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type nameSelector struct{}

func (nameSelector) Select(doc *model.Document) string { return "selected:" + doc.Name }

func TestQueryService_Answer(t *testing.T) {
	doc := &model.Document{ID: "doc-1", Name: "people.csv", Text: "    name  age\n0  Alice   30"}

	tests := []struct {
		name       string
		id         string
		question   string
		setupMocks func(mRepo *repoMocks.MockDocumentRepository, mEngine *infMocks.MockEngine)
		want       *model.Answer
		wantErr    error
	}{
		{
			name:     "happy path passes the whole document",
			id:       "doc-1",
			question: "How old is Alice?",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository, mEngine *infMocks.MockEngine) {
				mRepo.On("FindByID", mock.Anything, "doc-1").Return(doc, nil)
				mEngine.On("Answer", mock.Anything, "How old is Alice?", doc.Text).
					Return(&model.Answer{Answer: "30", Score: 0.9, Start: 25, End: 27}, nil)
			},
			want: &model.Answer{Answer: "30", Score: 0.9, Start: 25, End: 27},
		},
		{
			name:     "empty id",
			question: "q",
			wantErr:  ErrIDRequired,
		},
		{
			name:     "blank question",
			id:       "doc-1",
			question: "   ",
			wantErr:  ErrQuestionRequired,
		},
		{
			name:     "missing document never reaches the engine",
			id:       "missing",
			question: "q",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository, mEngine *infMocks.MockEngine) {
				mRepo.On("FindByID", mock.Anything, "missing").Return(nil, repository.ErrNotFound)
			},
			wantErr: ErrNotFound,
		},
		{
			name:     "store failure",
			id:       "doc-1",
			question: "q",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository, mEngine *infMocks.MockEngine) {
				mRepo.On("FindByID", mock.Anything, "doc-1").Return(nil, errors.New("connection refused"))
			},
			wantErr: ErrStorageFailure,
		},
		{
			name:     "engine failure",
			id:       "doc-1",
			question: "q",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository, mEngine *infMocks.MockEngine) {
				mRepo.On("FindByID", mock.Anything, "doc-1").Return(doc, nil)
				mEngine.On("Answer", mock.Anything, "q", doc.Text).Return(nil, errors.New("model is loading"))
			},
			wantErr: ErrInferenceFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockDocumentRepository)
			mEngine := new(infMocks.MockEngine)
			if tt.setupMocks != nil {
				tt.setupMocks(mRepo, mEngine)
			}
			svc := NewQueryService(mRepo, mEngine, nil)

			ans, err := svc.Answer(context.Background(), tt.id, tt.question)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, ans)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, ans)
			}
			mRepo.AssertExpectations(t)
			mEngine.AssertExpectations(t)
			if errors.Is(tt.wantErr, ErrNotFound) || errors.Is(tt.wantErr, ErrBadRequest) {
				mEngine.AssertNotCalled(t, "Answer", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestQueryService_CustomSelector(t *testing.T) {
	mRepo := new(repoMocks.MockDocumentRepository)
	mEngine := new(infMocks.MockEngine)
	mRepo.On("FindByID", mock.Anything, "doc-1").Return(&model.Document{ID: "doc-1", Name: "a.csv"}, nil)
	mEngine.On("Answer", mock.Anything, "q", "selected:a.csv").Return(&model.Answer{Answer: "x"}, nil)

	svc := NewQueryService(mRepo, mEngine, nameSelector{})
	_, err := svc.Answer(context.Background(), "doc-1", "q")

	require.NoError(t, err)
	mEngine.AssertExpectations(t)
}

func TestWholeDocument(t *testing.T) {
	doc := &model.Document{Text: "a\nb\nc"}
	assert.Equal(t, doc.Text, WholeDocument{}.Select(doc))
}
