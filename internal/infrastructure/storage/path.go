package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PicturePrefix is the root of every contact picture key.
const PicturePrefix = "pictures"

// PictureKey builds the storage key for a new picture, partitioned by the
// upload year and month: pictures/2024/03/<uuid>.jpg.
func PictureKey(uploadedAt time.Time, ext string) string {
	return fmt.Sprintf("%s/%04d/%02d/%s.%s",
		PicturePrefix, uploadedAt.Year(), int(uploadedAt.Month()), uuid.NewString(), ext)
}
