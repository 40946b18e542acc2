// package formatter exports a playlist's contribution history to CSV, Markdown, plain text and JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/HienH/smas-vibing/internal/models"
	"github.com/HienH/smas-vibing/internal/shared"
)

// Format names an export format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatJSON     Format = "json"
)

// ParseFormat accepts the CLI spellings of each [Format].
func ParseFormat(s string) (Format, error) {
	switch s {
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

// ContributionExport is a playlist with its contributions, newest first.
type ContributionExport struct {
	Playlist      *models.Playlist
	ShareURL      string
	Contributions []*models.Contribution
}

// TrackCount returns the number of tracks across all contributions.
func (e *ContributionExport) TrackCount() int {
	n := 0
	for _, c := range e.Contributions {
		n += len(c.Tracks)
	}
	return n
}

// ExportToCSV writes one row per contributed track with columns:
// Contribution, Contributor, ContributorID, Position, URI, Title, Artist, Album, ContributedAt, ExpiresAt
func ExportToCSV(export *ContributionExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Contribution", "Contributor", "ContributorID", "Position", "URI", "Title", "Artist", "Album", "ContributedAt", "ExpiresAt"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, c := range export.Contributions {
		for i, track := range c.Tracks {
			record := []string{
				c.ID(),
				c.ContributorName,
				c.ContributorID,
				strconv.Itoa(i + 1),
				track.URI,
				track.Name,
				track.Artist,
				track.Album,
				c.CreatedAt().Format(time.RFC3339),
				c.ExpiresAt.Format(time.RFC3339),
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders the playlist and each contribution as a section, with an optional cover image.
func ExportToMarkdown(export *ContributionExport, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", export.Playlist.Name))

	if imageFilename != "" {
		buf.WriteString(fmt.Sprintf("![Cover](%s)\n\n", imageFilename))
	}

	if export.Playlist.Description != "" {
		buf.WriteString(fmt.Sprintf("**Description**: %s\n\n", export.Playlist.Description))
	}
	if export.ShareURL != "" {
		buf.WriteString(fmt.Sprintf("**Share link**: %s\n", export.ShareURL))
	}

	buf.WriteString(fmt.Sprintf("**Contributions**: %d\n", len(export.Contributions)))
	buf.WriteString(fmt.Sprintf("**Tracks added**: %d\n\n", export.TrackCount()))

	buf.WriteString("## Contributions\n\n")
	for _, c := range export.Contributions {
		buf.WriteString(fmt.Sprintf("### %s (%s)\n\n", contributorLabel(c), c.CreatedAt().Format("2006-01-02")))
		for i, track := range c.Tracks {
			albumPart := ""
			if track.Album != "" {
				albumPart = fmt.Sprintf(" (%s)", track.Album)
			}
			buf.WriteString(fmt.Sprintf("%d. %s - %s%s\n", i+1, track.Artist, track.Name, albumPart))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts a ContributionExport to plain text format
func ExportToText(export *ContributionExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", export.Playlist.Name))
	if export.ShareURL != "" {
		buf.WriteString(fmt.Sprintf("Share link: %s\n", export.ShareURL))
	}
	buf.WriteString(fmt.Sprintf("Contributions: %d\n\n", len(export.Contributions)))

	for _, c := range export.Contributions {
		buf.WriteString(fmt.Sprintf("%s, %s, %d track(s)\n", contributorLabel(c), c.CreatedAt().Format("2006-01-02"), len(c.Tracks)))
		for i, track := range c.Tracks {
			buf.WriteString(fmt.Sprintf("  %d. %s - %s\n", i+1, track.Artist, track.Name))
		}
	}

	return buf.Bytes(), nil
}

type trackJSON struct {
	URI    string `json:"uri"`
	Name   string `json:"name"`
	Artist string `json:"artist"`
	Album  string `json:"album,omitempty"`
}

type contributionJSON struct {
	ID              string      `json:"id"`
	ContributorID   string      `json:"contributorId"`
	ContributorName string      `json:"contributorName"`
	CreatedAt       time.Time   `json:"createdAt"`
	ExpiresAt       time.Time   `json:"expiresAt"`
	Tracks          []trackJSON `json:"tracks"`
}

type playlistJSON struct {
	ID          string `json:"id"`
	SpotifyID   string `json:"spotifyId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	TrackCount  int    `json:"trackCount"`
	ShareURL    string `json:"shareUrl,omitempty"`
}

type exportJSON struct {
	Playlist      playlistJSON       `json:"playlist"`
	Contributions []contributionJSON `json:"contributions"`
}

// ExportToJSON converts a ContributionExport to indented JSON.
func ExportToJSON(export *ContributionExport) ([]byte, error) {
	out := exportJSON{
		Playlist:      toPlaylistJSON(export),
		Contributions: make([]contributionJSON, 0, len(export.Contributions)),
	}
	for _, c := range export.Contributions {
		tracks := make([]trackJSON, len(c.Tracks))
		for i, t := range c.Tracks {
			tracks[i] = trackJSON{URI: t.URI, Name: t.Name, Artist: t.Artist, Album: t.Album}
		}
		out.Contributions = append(out.Contributions, contributionJSON{
			ID:              c.ID(),
			ContributorID:   c.ContributorID,
			ContributorName: c.ContributorName,
			CreatedAt:       c.CreatedAt(),
			ExpiresAt:       c.ExpiresAt,
			Tracks:          tracks,
		})
	}
	return json.MarshalIndent(out, "", "  ")
}

// ToMetadataJSON generates a JSON representation of playlist metadata (without contributions)
func ToMetadataJSON(export *ContributionExport) ([]byte, error) {
	return json.MarshalIndent(toPlaylistJSON(export), "", "  ")
}

func toPlaylistJSON(export *ContributionExport) playlistJSON {
	return playlistJSON{
		ID:          export.Playlist.ID(),
		SpotifyID:   export.Playlist.SpotifyID,
		Name:        export.Playlist.Name,
		Description: export.Playlist.Description,
		TrackCount:  export.Playlist.TrackCount,
		ShareURL:    export.ShareURL,
	}
}

// Render returns export in format.
func Render(export *ContributionExport, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(export)
	case FormatMarkdown:
		return ExportToMarkdown(export, "")
	case FormatText:
		return ExportToText(export)
	case FormatJSON:
		return ExportToJSON(export)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// Write renders export in format to w.
func Write(w io.Writer, export *ContributionExport, format Format) error {
	data, err := Render(export, format)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	TracksFile   string
	MetadataFile string
}

// WriteCSVExport exports contributions to CSV format with accompanying metadata JSON file.
//
// Defaults to the playlist ID as the base filename & creates {base}_contributions.csv and {base}_metadata.json
func WriteCSVExport(export *ContributionExport, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = export.Playlist.ID()
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	tracksFile := baseFilepath + "_contributions.csv"
	if err := os.WriteFile(tracksFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		TracksFile:   tracksFile,
		MetadataFile: metadataFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport exports contributions to Markdown format in a dedicated directory.
//
// Directory name defaults to the playlist ID. When cover is non-empty it is saved as cover.jpg and linked.
// Creates a directory structure: {dir}/README.md and optionally {dir}/cover.jpg
func WriteMarkdownExport(export *ContributionExport, outputDir string, cover []byte) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = export.Playlist.ID()
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if len(cover) > 0 {
		coverImagePath := filepath.Join(outputDir, "cover.jpg")
		if err := os.WriteFile(coverImagePath, cover, 0644); err != nil {
			return nil, fmt.Errorf("failed to save cover image: %w", err)
		}
		coverImageFilename = "cover.jpg"
		result.CoverImage = coverImagePath
		result.Files = append(result.Files, coverImagePath)
	}

	mdData, err := ExportToMarkdown(export, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteTextExport exports contributions to plain text format.
//
// Defaults to {playlist.ID}_contributions.txt as the filename.
func WriteTextExport(export *ContributionExport, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s_contributions.txt", export.Playlist.ID())
	}

	textData, err := ExportToText(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}

// WriteJSONExport exports contributions to a JSON file.
//
// Defaults to {playlist.ID}_contributions.json as the filename.
func WriteJSONExport(export *ContributionExport, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s_contributions.json", export.Playlist.ID())
	}

	data, err := ExportToJSON(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate JSON: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}

	return path, nil
}

func contributorLabel(c *models.Contribution) string {
	if c.ContributorName != "" {
		return c.ContributorName
	}
	return c.ContributorID
}
