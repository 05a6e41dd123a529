package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const calendarFixture = `
<table>
  <tbody>
    <tr>
      <td class="dot--red" data-date="2025-8-14">14</td>
      <td class="dot--grey" data-date="2025-8-15">15</td>
      <td class="dot--grey" data-date="2025-8-16">16</td>
    </tr>
    <tr>
      <td class="cal-today" data-date="2025-8-17">17</td>
      <td class="dot--grey" data-date="2025-8-18">18</td>
      <td class="dot--grey">no date attr</td>
      <td>plain cell</td>
    </tr>
  </tbody>
</table>`

func TestAvailableDates(t *testing.T) {
	dates, err := AvailableDates(calendarFixture)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-8-15", "2025-8-16", "2025-8-18"}, dates)
}

func TestAvailableDatesEmptyCalendar(t *testing.T) {
	dates, err := AvailableDates(`<table><tr><td class="dot--red" data-date="2025-9-1">1</td></tr></table>`)
	require.NoError(t, err)
	assert.Empty(t, dates)
}

func TestAvailableDatesIgnoresOtherClasses(t *testing.T) {
	dates, err := AvailableDates(`<td class="dot--greyish" data-date="2025-9-2">2</td>`)
	require.NoError(t, err)
	assert.Empty(t, dates, "class must match exactly, not by prefix")
}

func TestChooseDate(t *testing.T) {
	preferred := map[string]struct{}{
		"2025-8-16": {},
		"2025-8-17": {},
	}

	tests := []struct {
		name      string
		available []string
		want      string
	}{
		{
			name:      "preferred date available",
			available: []string{"2025-8-15", "2025-8-16"},
			want:      "2025-8-16",
		},
		{
			name:      "first preferred match wins",
			available: []string{"2025-8-17", "2025-8-16"},
			want:      "2025-8-17",
		},
		{
			name:      "nothing preferred available",
			available: []string{"2025-8-15", "2025-8-18"},
			want:      "",
		},
		{
			name:      "empty calendar",
			available: nil,
			want:      "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChooseDate(tt.available, preferred))
		})
	}
}
