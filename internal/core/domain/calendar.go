package domain

import (
	"fmt"
	"sort"
	"strings"
)

const ObservanceDays = 30

type RegionProfile struct {
	RegionID  string       `json:"region_id"`
	StartDate CalendarDate `json:"start_date"`
}

// CalendarWindow is always derived from a RegionProfile and never stored.
type CalendarWindow struct {
	Start     CalendarDate `json:"start"`
	TotalDays int          `json:"total_days"`
}

func ResolveWindow(profile RegionProfile) CalendarWindow {
	return CalendarWindow{Start: profile.StartDate, TotalDays: ObservanceDays}
}

func (w CalendarWindow) End() CalendarDate {
	return w.Start.AddDays(w.TotalDays - 1)
}

func (w CalendarWindow) IsBefore(d CalendarDate) bool {
	return d.Before(w.Start)
}

func (w CalendarWindow) IsWithin(d CalendarDate) bool {
	return !d.Before(w.Start) && !d.After(w.End())
}

// DayIndex is 0 before the window and 1..30 from its first day on.
// Dates past the end stay pinned at 30.
func (w CalendarWindow) DayIndex(d CalendarDate) int {
	if w.IsBefore(d) {
		return 0
	}
	return min(w.TotalDays-1, d.DaysSince(w.Start)) + 1
}

type DateClass struct {
	Date     CalendarDate `json:"date"`
	DayIndex int          `json:"day_index"`
	Before   bool         `json:"before_window"`
	Within   bool         `json:"within_window"`
}

// ClassifyDate is the string boundary of the calendar policy: the key is
// validated before any arithmetic happens.
func (w CalendarWindow) ClassifyDate(key string) (DateClass, error) {
	d, err := ParseDate(key)
	if err != nil {
		return DateClass{}, err
	}
	return DateClass{
		Date:     d,
		DayIndex: w.DayIndex(d),
		Before:   w.IsBefore(d),
		Within:   w.IsWithin(d),
	}, nil
}

type Region struct {
	ID        string       `json:"id" yaml:"id"`
	Name      string       `json:"name" yaml:"name"`
	StartDate CalendarDate `json:"start_date" yaml:"start_date"`
}

// RegionCatalog maps selectable regions to their configured start dates.
type RegionCatalog struct {
	regions   map[string]Region
	defaultID string
}

func NewRegionCatalog(defaultID string, regions ...Region) (*RegionCatalog, error) {
	if len(regions) == 0 {
		return nil, fmt.Errorf("region catalog: at least one region is required")
	}
	c := &RegionCatalog{regions: make(map[string]Region, len(regions))}
	for _, r := range regions {
		id := strings.TrimSpace(r.ID)
		if id == "" {
			return nil, fmt.Errorf("region catalog: region id cannot be empty")
		}
		if r.StartDate.IsZero() {
			return nil, fmt.Errorf("region catalog: region %q has no start date", id)
		}
		if _, dup := c.regions[id]; dup {
			return nil, fmt.Errorf("region catalog: duplicate region %q", id)
		}
		r.ID = id
		if r.Name == "" {
			r.Name = id
		}
		c.regions[id] = r
	}
	if defaultID == "" {
		defaultID = regions[0].ID
	}
	if _, ok := c.regions[defaultID]; !ok {
		return nil, fmt.Errorf("region catalog: default region %q: %w", defaultID, ErrUnknownRegion)
	}
	c.defaultID = defaultID
	return c, nil
}

func (c *RegionCatalog) Profile(regionID string) (RegionProfile, error) {
	r, ok := c.regions[regionID]
	if !ok {
		return RegionProfile{}, fmt.Errorf("%w: %s", ErrUnknownRegion, regionID)
	}
	return RegionProfile{RegionID: r.ID, StartDate: r.StartDate}, nil
}

func (c *RegionCatalog) DefaultProfile() RegionProfile {
	p, _ := c.Profile(c.defaultID)
	return p
}

// Resolve returns the window for profile. A nil profile falls back to the
// default region and reports unresolved=true so callers can prompt for one.
func (c *RegionCatalog) Resolve(profile *RegionProfile) (window CalendarWindow, unresolved bool) {
	if profile == nil || profile.StartDate.IsZero() {
		return ResolveWindow(c.DefaultProfile()), true
	}
	return ResolveWindow(*profile), false
}

func (c *RegionCatalog) Regions() []Region {
	out := make([]Region, 0, len(c.regions))
	for _, r := range c.regions {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (c *RegionCatalog) DefaultID() string { return c.defaultID }
