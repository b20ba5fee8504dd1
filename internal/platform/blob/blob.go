// Package blob stores uploaded file bytes and hands back a fileRef that
// can be resolved later.
package blob

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/yungbote/studypath/internal/pkg/errors"
)

type Store interface {
	// Put stores data for a study and returns its fileRef.
	Put(ctx context.Context, studyID, fileName string, data []byte) (string, error)
	Get(ctx context.Context, ref string) ([]byte, error)
	// DeleteStudy removes every blob stored for studyID.
	DeleteStudy(ctx context.Context, studyID string) error
}

var unsafeNameRE = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// objectKey lays blobs out as uploads/<study>/<uuid>-<name>.
func objectKey(studyID, fileName string) (string, error) {
	studyID = strings.TrimSpace(studyID)
	if studyID == "" || strings.ContainsAny(studyID, `/\`) || studyID == "." || studyID == ".." {
		return "", fmt.Errorf("blob study id %q: %w", studyID, pkgerrors.ErrInvalidArgument)
	}
	name := unsafeNameRE.ReplaceAllString(path.Base(strings.ReplaceAll(fileName, `\`, "/")), "_")
	name = strings.Trim(name, "._")
	if name == "" {
		name = "upload"
	}
	return path.Join(studyPrefix(studyID), uuid.NewString()+"-"+name), nil
}

func studyPrefix(studyID string) string {
	return path.Join("uploads", studyID) + "/"
}
