package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleICS = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Test//EN
BEGIN:VEVENT
UID:farmers-market-1
SUMMARY:Farmers Market
DESCRIPTION:Local produce and crafts
LOCATION:Town Square
URL:https://example.org/events/details/farmers-market
CATEGORIES:Community,Outdoors
DTSTART:20250607T090000Z
DTEND:20250607T120000Z
RRULE:FREQ=WEEKLY;COUNT=10
END:VEVENT
BEGIN:VEVENT
UID:allday-1
SUMMARY:Art Walk
DTSTART;VALUE=DATE:20250614
DTEND;VALUE=DATE:20250615
END:VEVENT
BEGIN:VEVENT
SUMMARY:No UID here
DTSTART:20250601T090000Z
END:VEVENT
END:VCALENDAR
`

func TestParseICS(t *testing.T) {
	src := Source{ID: "farmers-market", URL: "https://example.org/x.ics", Page: "https://example.org/events/details/farmers-market"}

	events, err := ParseICS(src, []byte(sampleICS))
	require.NoError(t, err)
	// The UID-less VEVENT is skipped, not fatal.
	require.Len(t, events, 2)

	ev := events[0]
	assert.Equal(t, "farmers-market-1", ev.UID)
	assert.Equal(t, "Farmers Market", ev.Summary)
	assert.Equal(t, "Local produce and crafts", ev.Description)
	assert.Equal(t, "Town Square", ev.Location)
	assert.Equal(t, "https://example.org/events/details/farmers-market", ev.URL)
	assert.Equal(t, []string{"Community", "Outdoors"}, ev.Categories)
	assert.Equal(t, "FREQ=WEEKLY;COUNT=10", ev.RawRRule)
	assert.False(t, ev.AllDay)
	assert.Equal(t, src, ev.Source)

	assert.True(t, events[1].AllDay)
	assert.Empty(t, events[1].RawRRule)
}

func TestParseICSEmptyBody(t *testing.T) {
	_, err := ParseICS(Source{}, nil)
	assert.Error(t, err)
}
