package drive

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	folderMimeType      = "application/vnd.google-apps.folder"
	spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"
	xlsxMimeType        = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type Service struct {
	srv *drive.Service
}

func NewService(ctx context.Context, credentialsJSON string) (*Service, error) {
	// Parse credentials from JSON
	config, err := google.JWTConfigFromJSON(
		[]byte(credentialsJSON),
		drive.DriveReadonlyScope,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account credentials: %w", err)
	}

	srv, err := drive.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Drive client: %w", err)
	}

	return &Service{srv: srv}, nil
}

type File struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MimeType     string `json:"mimeType"`
	ModifiedTime string `json:"modifiedTime,omitempty"`
	Size         int64  `json:"size,string,omitempty"`
}

// IsSpreadsheet reports whether the file is a native Google Sheets document.
func (f *File) IsSpreadsheet() bool {
	return f.MimeType == spreadsheetMimeType
}

// ListFiles returns all non-trashed files of a folder, following pagination.
func (s *Service) ListFiles(ctx context.Context, folderID string) ([]*File, error) {
	if folderID == "" {
		folderID = "root"
	}

	var files []*File
	pageToken := ""
	for {
		call := s.srv.Files.List().
			Context(ctx).
			Q(fmt.Sprintf("'%s' in parents and trashed=false and mimeType!='%s'", folderID, folderMimeType)).
			Fields("nextPageToken, files(id, name, mimeType, modifiedTime, size)").
			PageSize(200)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		result, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("unable to retrieve files: %w", err)
		}

		for _, f := range result.Files {
			files = append(files, &File{
				ID:           f.Id,
				Name:         f.Name,
				MimeType:     f.MimeType,
				ModifiedTime: f.ModifiedTime,
				Size:         f.Size,
			})
		}

		pageToken = result.NextPageToken
		if pageToken == "" {
			return files, nil
		}
	}
}

// DownloadFile writes the file content to w. Google Sheets documents are
// exported as xlsx.
func (s *Service) DownloadFile(ctx context.Context, f *File, w io.Writer) error {
	var (
		body io.ReadCloser
		err  error
	)
	if f.IsSpreadsheet() {
		resp, exportErr := s.srv.Files.Export(f.ID, xlsxMimeType).Context(ctx).Download()
		if exportErr == nil {
			body = resp.Body
		}
		err = exportErr
	} else {
		resp, getErr := s.srv.Files.Get(f.ID).Context(ctx).Download()
		if getErr == nil {
			body = resp.Body
		}
		err = getErr
	}
	if err != nil {
		return fmt.Errorf("unable to download file %s: %w", f.Name, err)
	}
	defer body.Close()

	_, err = io.Copy(w, body)
	return err
}

// FindFolderByPath resolves a slash separated folder path below My Drive.
func (s *Service) FindFolderByPath(ctx context.Context, path string) (string, error) {
	if path == "" {
		return "root", nil
	}

	currentID := "root"
	for _, folder := range strings.Split(path, "/") {
		if folder == "" {
			continue
		}

		result, err := s.srv.Files.List().
			Context(ctx).
			Q(fmt.Sprintf("'%s' in parents and name='%s' and mimeType='%s' and trashed=false",
				currentID, strings.ReplaceAll(folder, "'", `\'`), folderMimeType)).
			Fields("files(id, name)").
			Do()
		if err != nil {
			return "", fmt.Errorf("error finding folder %s: %w", folder, err)
		}

		if len(result.Files) == 0 {
			return "", fmt.Errorf("folder not found: %s", folder)
		}

		currentID = result.Files[0].Id
	}

	return currentID, nil
}
