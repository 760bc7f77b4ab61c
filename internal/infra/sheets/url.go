package sheets

import "strings"

// ExportURL turns a shared Google Sheets link into its CSV export link. Google Docs
// links get the plain-text export. Other URLs are returned with format=csv appended
// when missing.
func ExportURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if isDocument(raw) {
		return documentTextURL(raw)
	}
	return sheetCSVURL(raw)
}

// DocumentExportURL returns the plain-text export of a Google Docs link, or the CSV
// export when the link points to a spreadsheet.
func DocumentExportURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, "/spreadsheets/d/") {
		return sheetCSVURL(raw)
	}
	if !isDocument(raw) {
		return raw
	}
	return documentTextURL(raw)
}

// isDocument reports a Docs link. A spreadsheet path wins when both show up.
func isDocument(raw string) bool {
	return strings.Contains(raw, "/document/d/") && !strings.Contains(raw, "/spreadsheets/d/")
}

func sheetCSVURL(raw string) string {
	if idx := strings.Index(raw, "/edit"); idx >= 0 {
		return raw[:idx] + "/export?format=csv"
	}
	if strings.Contains(raw, "format=csv") {
		return raw
	}
	if strings.Contains(raw, "?") {
		return raw + "&format=csv"
	}
	return raw + "?format=csv"
}

func documentTextURL(raw string) string {
	if idx := strings.Index(raw, "/edit"); idx >= 0 {
		raw = raw[:idx]
	}
	raw = strings.TrimSuffix(raw, "/")
	if strings.Contains(raw, "/export") {
		return raw
	}
	return raw + "/export?format=txt"
}
