package server

import (
	"errors"
	"regexp"
	"strings"
)

// clubURLRegex matches campfire onelink share URLs including an optional query
// string carrying the deep link payload.
var clubURLRegex = regexp.MustCompile(`https://campfire\.onelink\.me/[a-zA-Z0-9]+(?:\?[^ \t\r\n]*)?`)

var (
	errMultipleClubReferences = errors.New("Multiple club URLs or IDs found.")
	errNoClubReference        = errors.New("No club reference provided.")
	errNoClubReferenceFound   = errors.New("No club URL or ID found in the provided input.")
)

const (
	clubRefURL = "url"
	clubRefID  = "id"
)

// extractClubReference scans free-form text for a club share URL or a club ID.
// Tokens containing exactly four hyphens count as IDs. More than one candidate
// is an error.
func extractClubReference(raw string) (string, string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", nil
	}

	var clubURL, clubID string
	for _, token := range strings.Fields(raw) {
		if match := clubURLRegex.FindString(token); match != "" {
			if clubURL != "" || clubID != "" {
				return "", "", errMultipleClubReferences
			}
			clubURL = match
			continue
		}

		if strings.Count(token, "-") == 4 {
			if clubURL != "" || clubID != "" {
				return "", "", errMultipleClubReferences
			}
			clubID = token
		}
	}

	return clubURL, clubID, nil
}

// normalizeClubLookup turns raw user input into either a club URL or a club
// ID. In strict mode the input must contain a recognizable reference,
// otherwise the raw value falls back to the given default kind so plain
// ?url=/?id= parameters keep working.
func normalizeClubLookup(raw string, strict bool, defaultKind string) (string, string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if strict {
			return "", "", errNoClubReference
		}
		return "", "", nil
	}

	clubURL, clubID, err := extractClubReference(raw)
	if err != nil {
		return "", "", err
	}
	if clubURL != "" || clubID != "" {
		return clubURL, clubID, nil
	}

	if strict {
		return "", "", errNoClubReferenceFound
	}

	switch defaultKind {
	case clubRefURL:
		return raw, "", nil
	case clubRefID:
		return "", raw, nil
	}
	return "", "", nil
}
