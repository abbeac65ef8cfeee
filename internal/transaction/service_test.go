package transaction_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

func TestService_Add(t *testing.T) {
	type args struct {
		candidate transaction.Candidate
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *transaction.MockRepository)
		wantKind  transaction.Kind
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{candidate: validCandidate()},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					Append(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
						tx.ID = 1
						return nil
					})
			},
		},
		{
			name: "ValidationErrorSkipsRepository",
			args: args{candidate: transaction.Candidate{
				Date: "2024-01-01", Type: "income", Amount: "0", Currency: "USD", Category: "x",
			}},
			wantKind: transaction.KindInvalidAmount,
			wantErr:  true,
		},
		{
			name: "RepoError",
			args: args{candidate: validCandidate()},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					Append(gomock.Any(), gomock.Any()).
					Return(errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := transaction.NewService(repo)
			got, err := svc.Add(context.Background(), tt.args.candidate)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				if tt.wantKind != "" {
					assert.ErrorIs(t, err, tt.wantKind)
				}

				return
			}

			require.NoError(t, err)
			assert.Equal(t, int64(1), got.ID)
			assert.Equal(t, "Groceries", got.Category)
		})
	}
}

func TestService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo)

	expense := transaction.TypeExpense
	filter := transaction.ListFilter{Type: &expense}

	repo.EXPECT().
		List(gomock.Any(), filter).
		Return([]*transaction.Transaction{{ID: 1}, {ID: 2}}, nil)

	seq, err := svc.List(context.Background(), filter)
	require.NoError(t, err)

	// The sequence can be ranged over more than once with the same result.
	first := slices.Collect(seq)
	second := slices.Collect(seq)

	require.Len(t, first, 2)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), first[0].ID)
	assert.Equal(t, int64(2), first[1].ID)
}

func TestService_List_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo)

	repo.EXPECT().
		List(gomock.Any(), transaction.ListFilter{}).
		Return(nil, errors.New("list error"))

	seq, err := svc.List(context.Background(), transaction.ListFilter{})
	assert.Error(t, err)
	assert.Nil(t, seq)
}

func TestService_AppendBatch_EmptySkipsRepository(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := transaction.NewService(transaction.NewMockRepository(ctrl))
	assert.NoError(t, svc.AppendBatch(context.Background(), nil))
}

func TestService_ClearAndLen(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo)

	repo.EXPECT().Count(gomock.Any()).Return(3, nil)
	repo.EXPECT().Clear(gomock.Any()).Return(nil)

	n, err := svc.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.NoError(t, svc.Clear(context.Background()))
}

func TestListFilter_Match(t *testing.T) {
	tx := &transaction.Transaction{
		Date:     time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
		Type:     transaction.TypeExpense,
		Amount:   100,
		Currency: transaction.CurrencyEUR,
		Category: "Food",
	}

	day := func(y, m, d int) *time.Time {
		return new(time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC))
	}

	type testCase struct {
		name   string
		filter transaction.ListFilter
		want   bool
	}

	tests := []testCase{
		{name: "Empty", filter: transaction.ListFilter{}, want: true},
		{name: "InclusiveStart", filter: transaction.ListFilter{StartDate: day(2024, 5, 10)}, want: true},
		{name: "InclusiveEnd", filter: transaction.ListFilter{EndDate: day(2024, 5, 10)}, want: true},
		{name: "BeforeStart", filter: transaction.ListFilter{StartDate: day(2024, 5, 11)}, want: false},
		{name: "AfterEnd", filter: transaction.ListFilter{EndDate: day(2024, 5, 9)}, want: false},
		{name: "Type", filter: transaction.ListFilter{Type: new(transaction.TypeIncome)}, want: false},
		{name: "CategoryCaseInsensitive", filter: transaction.ListFilter{Category: new("food")}, want: true},
		{name: "OtherCategory", filter: transaction.ListFilter{Category: new("Rent")}, want: false},
		{name: "Currency", filter: transaction.ListFilter{Currency: new(transaction.CurrencyUSD)}, want: false},
		{name: "YearMonth", filter: transaction.ListFilter{Year: new(2024), Month: new(time.May)}, want: true},
		{name: "OtherMonth", filter: transaction.ListFilter{Month: new(time.June)}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Match(tx))
		})
	}
}
