package checkout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func TestNewCheckout(t *testing.T) {
	tests := []struct {
		name    string
		days    int
		wantDue time.Time
	}{
		{name: "指定借期", days: 14, wantDue: day0.AddDate(0, 0, 14)},
		{name: "零借期使用默认值", days: 0, wantDue: day0.AddDate(0, 0, DefaultLoanPeriodDays)},
		{name: "负借期使用默认值", days: -3, wantDue: day0.AddDate(0, 0, DefaultLoanPeriodDays)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCheckout(1, 2, day0, tt.days)
			assert.Equal(t, StatusActive, c.Status)
			assert.Equal(t, tt.wantDue, c.DueDate)
			assert.Nil(t, c.ReturnDate)
			assert.True(t, c.IsOpen())
		})
	}
}

func TestCheckout_Close(t *testing.T) {
	c := NewCheckout(1, 2, day0, 7)

	require.NoError(t, c.Close(day0.Add(time.Hour)))
	assert.Equal(t, StatusReturned, c.Status)
	require.NotNil(t, c.ReturnDate)
	assert.False(t, c.IsOpen())

	assert.ErrorIs(t, c.Close(day0.Add(2*time.Hour)), ErrAlreadyReturned)
	assert.Equal(t, day0.Add(time.Hour), *c.ReturnDate)
}

func TestCheckout_CloseOverdue(t *testing.T) {
	c := NewCheckout(1, 2, day0, 7)
	require.True(t, c.MarkOverdue(day0.AddDate(0, 0, 8)))

	require.NoError(t, c.Close(day0.AddDate(0, 0, 9)))
	assert.Equal(t, StatusReturned, c.Status)
}

func TestCheckout_MarkOverdue(t *testing.T) {
	c := NewCheckout(1, 2, day0, 7)

	// 恰好到期不算逾期
	assert.False(t, c.MarkOverdue(c.DueDate))
	assert.Equal(t, StatusActive, c.Status)

	later := c.DueDate.Add(time.Second)
	assert.True(t, c.MarkOverdue(later))
	assert.Equal(t, StatusOverdue, c.Status)

	// 幂等
	assert.False(t, c.MarkOverdue(later.Add(time.Hour)))
	assert.Equal(t, StatusOverdue, c.Status)
	assert.True(t, c.IsOpen())
}

func TestCheckout_MarkOverdueIgnoresReturned(t *testing.T) {
	c := NewCheckout(1, 2, day0, 7)
	require.NoError(t, c.Close(day0))

	assert.False(t, c.MarkOverdue(day0.AddDate(0, 1, 0)))
	assert.Equal(t, StatusReturned, c.Status)
}

func TestCheckout_DaysOverdue(t *testing.T) {
	c := NewCheckout(1, 2, day0, 7)
	assert.Equal(t, 0, c.DaysOverdue(day0))
	assert.Equal(t, 3, c.DaysOverdue(c.DueDate.AddDate(0, 0, 3).Add(time.Hour)))
}
