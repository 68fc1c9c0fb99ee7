package handler

import (
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/cuisports/sportsreg/internal/apierror"
	"github.com/cuisports/sportsreg/internal/service"
)

// sniffContentType returns the declared part type when it is an accepted
// ID card type and the detected type otherwise. The file is rewound.
func sniffContentType(file multipart.File, declared string) (string, error) {
	if mediaType, _, err := mime.ParseMediaType(declared); err == nil {
		if _, ok := service.IDCardContentTypes[mediaType]; ok {
			return mediaType, nil
		}
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", apierror.NewErrInternalServerError(err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", apierror.NewErrInternalServerError(err)
	}

	mediaType, _, err := mime.ParseMediaType(http.DetectContentType(head[:n]))
	if err != nil {
		return "", apierror.NewErrInvalidField("universityIdCard", "Unrecognized file type")
	}
	return mediaType, nil
}
