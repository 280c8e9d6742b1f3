package title

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTitle(t *testing.T) {
	tests := []struct {
		name    string
		isbn    string
		title   string
		copies  int
		wantErr error
	}{
		{name: "正常入库", isbn: "978-7-115-42802-8", title: "Go语言圣经", copies: 3},
		{name: "零副本", isbn: "7115428028", title: "Go语言圣经", copies: 0},
		{name: "负副本", isbn: "9787115428028", title: "Go语言圣经", copies: -1, wantErr: ErrInvalidRange},
		{name: "ISBN位数不对", isbn: "12345", title: "Go语言圣经", copies: 1, wantErr: ErrInvalidISBN},
		{name: "书名为空", isbn: "9787115428028", copies: 1, wantErr: ErrNameRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTitle(tt.isbn, tt.title, "", tt.copies)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.copies, got.TotalCopies)
			assert.Equal(t, tt.copies, got.AvailableCopies)
			assert.NotContains(t, got.ISBN, "-")
		})
	}
}

func TestTitle_Status(t *testing.T) {
	tt := &Title{TotalCopies: 1, AvailableCopies: 1}
	assert.Equal(t, StatusAvailable, tt.Status())

	require.NoError(t, tt.Decrement())
	assert.Equal(t, StatusAllCheckedOut, tt.Status())

	require.NoError(t, tt.Withdraw())
	assert.Equal(t, StatusWithdrawn, tt.Status())

	// 下架覆盖推导值
	require.NoError(t, tt.Increment())
	assert.Equal(t, StatusWithdrawn, tt.Status())
}

func TestTitle_DecrementIncrement(t *testing.T) {
	tt := &Title{TotalCopies: 1, AvailableCopies: 0}

	assert.ErrorIs(t, tt.Decrement(), ErrOutOfStock)
	assert.Equal(t, 0, tt.AvailableCopies)

	require.NoError(t, tt.Increment())
	assert.Equal(t, 1, tt.AvailableCopies)

	assert.ErrorIs(t, tt.Increment(), ErrInvariantViolation)
	assert.Equal(t, 1, tt.AvailableCopies)
}

func TestTitle_SetCounts(t *testing.T) {
	tests := []struct {
		name           string
		total, avail   int
		wantDelta      int
		wantErr        error
		wantTotal      int
		wantAvailAfter int
	}{
		{name: "可借数大于总数", total: 3, avail: 5, wantErr: ErrInvalidRange, wantTotal: 2, wantAvailAfter: 1},
		{name: "负数总数", total: -1, avail: 0, wantErr: ErrInvalidRange, wantTotal: 2, wantAvailAfter: 1},
		{name: "负数可借", total: 2, avail: -1, wantErr: ErrInvalidRange, wantTotal: 2, wantAvailAfter: 1},
		{name: "增加可借", total: 5, avail: 4, wantDelta: 3, wantTotal: 5, wantAvailAfter: 4},
		{name: "减少可借", total: 2, avail: 0, wantDelta: -1, wantTotal: 2, wantAvailAfter: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tt := &Title{TotalCopies: 2, AvailableCopies: 1}
			delta, err := tt.SetCounts(tc.total, tc.avail)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.wantDelta, delta)
			}
			assert.Equal(t, tc.wantTotal, tt.TotalCopies)
			assert.Equal(t, tc.wantAvailAfter, tt.AvailableCopies)
		})
	}
}

func TestTitle_Withdrawn(t *testing.T) {
	tt := &Title{TotalCopies: 2, AvailableCopies: 2}
	require.NoError(t, tt.Withdraw())

	assert.ErrorIs(t, tt.Withdraw(), ErrTitleWithdrawn)
	assert.ErrorIs(t, tt.AddCopies(1), ErrTitleWithdrawn)
	_, err := tt.SetCounts(3, 3)
	assert.ErrorIs(t, err, ErrTitleWithdrawn)
}

func TestTitle_AddCopies(t *testing.T) {
	tt := &Title{TotalCopies: 1, AvailableCopies: 0}
	assert.ErrorIs(t, tt.AddCopies(0), ErrInvalidRange)

	require.NoError(t, tt.AddCopies(2))
	assert.Equal(t, 3, tt.TotalCopies)
	assert.Equal(t, 2, tt.AvailableCopies)
}

func TestTitle_UpdateMetadata(t *testing.T) {
	tt := &Title{Author: "Alan Donovan"}
	tt.UpdateMetadata("someone else", "Computers", "Addison-Wesley", "http://covers/1.jpg", "")

	assert.Equal(t, "Alan Donovan", tt.Author)
	assert.Equal(t, "Computers", tt.Category)
	assert.Equal(t, "Addison-Wesley", tt.Publisher)
}
