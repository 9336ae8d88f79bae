package domain

import (
	"fmt"
	"strconv"
	"strings"
)

type ActivityType string

const (
	ActivityFasting  ActivityType = "fasting"
	ActivityTaraweeh ActivityType = "taraweeh"
	ActivityQuran    ActivityType = "quran"
)

const (
	PrayerFajr    = "fajr"
	PrayerDhuhr   = "dhuhr"
	PrayerAsr     = "asr"
	PrayerMaghrib = "maghrib"
	PrayerIsha    = "isha"

	TotalJuz = 30
)

var Prayers = []string{PrayerFajr, PrayerDhuhr, PrayerAsr, PrayerMaghrib, PrayerIsha}

// StreakActivities are the activity types streaks are tracked for.
var StreakActivities = []ActivityType{ActivityFasting, ActivityTaraweeh, ActivityQuran}

func PrayerActivity(name string) ActivityType {
	return ActivityType("prayer_" + name)
}

func isPrayer(name string) bool {
	for _, p := range Prayers {
		if p == name {
			return true
		}
	}
	return false
}

func (a ActivityType) Valid() bool {
	switch a {
	case ActivityFasting, ActivityTaraweeh, ActivityQuran:
		return true
	}
	name, ok := strings.CutPrefix(string(a), "prayer_")
	return ok && isPrayer(name)
}

type WriteKind int

const (
	WriteMetadata WriteKind = iota
	WriteActivityField
)

func (k WriteKind) String() string {
	if k == WriteActivityField {
		return "activity"
	}
	return "metadata"
}

const (
	KeyFasting  = "fasting"
	KeyTaraweeh = "taraweeh"
	KeyNotes    = "notes"
	KeyDay      = "day"

	keyPrayerPrefix = "prayer_"
	keyJuzPrefix    = "juz_"
	keyMetaPrefix   = "meta_"
)

var profileMetadataKeys = map[string]bool{
	"onboardingCompleted":  true,
	"language":             true,
	"notificationsEnabled": true,
}

// FieldTarget says where a write lands.
type FieldTarget int

const (
	TargetLedger FieldTarget = iota
	TargetProfile
)

// FieldKey is a parsed write key.
type FieldKey struct {
	Raw    string
	Kind   WriteKind
	Target FieldTarget
	Prayer string
	Juz    int
}

func ParseFieldKey(raw string) (FieldKey, error) {
	key := strings.TrimSpace(raw)
	k := FieldKey{Raw: key, Kind: WriteActivityField, Target: TargetLedger}

	switch {
	case key == KeyFasting, key == KeyTaraweeh:
		return k, nil
	case key == KeyNotes:
		k.Kind = WriteMetadata
		return k, nil
	case strings.HasPrefix(key, keyPrayerPrefix):
		name := strings.TrimPrefix(key, keyPrayerPrefix)
		if !isPrayer(name) {
			return FieldKey{}, fmt.Errorf("%w: %s", ErrUnknownField, raw)
		}
		k.Prayer = name
		return k, nil
	case strings.HasPrefix(key, keyJuzPrefix):
		n, err := strconv.Atoi(strings.TrimPrefix(key, keyJuzPrefix))
		if err != nil || n < 1 || n > TotalJuz {
			return FieldKey{}, fmt.Errorf("%w: %s", ErrUnknownField, raw)
		}
		k.Juz = n
		return k, nil
	case profileMetadataKeys[key], strings.HasPrefix(key, keyMetaPrefix) && len(key) > len(keyMetaPrefix):
		k.Kind = WriteMetadata
		k.Target = TargetProfile
		return k, nil
	}
	return FieldKey{}, fmt.Errorf("%w: %s", ErrUnknownField, raw)
}

// Activities returns the streak activity types a write to this key can change.
func (k FieldKey) Activities() []ActivityType {
	switch {
	case k.Raw == KeyFasting:
		return []ActivityType{ActivityFasting}
	case k.Raw == KeyTaraweeh:
		return []ActivityType{ActivityTaraweeh}
	case k.Juz > 0:
		return []ActivityType{ActivityQuran}
	case k.Prayer != "":
		return []ActivityType{PrayerActivity(k.Prayer)}
	}
	return nil
}
