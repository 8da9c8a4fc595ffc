package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAbsolute(t *testing.T) {
	d := &Discoverer{Base: "https://business.perdidochamber.com"}

	assert.Equal(t,
		"https://business.perdidochamber.com/events/ical/x.ics",
		d.absolute("/events/ical/x.ics"))
	assert.Equal(t,
		"https://other.example.org/a.ics",
		d.absolute("https://other.example.org/a.ics"))
	assert.Equal(t, "", d.absolute("  "))
}

func TestDetailSlugRe(t *testing.T) {
	m := detailSlugRe.FindStringSubmatch("https://x.org/events/details/fall-festival-2025?occ=3#top")
	assert.Equal(t, "fall-festival-2025", m[1])

	assert.Nil(t, detailSlugRe.FindStringSubmatch("https://x.org/events/calendar/2025-06-01"))
}
