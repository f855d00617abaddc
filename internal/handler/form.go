package handler

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/userdeck/userdeck/internal/handler/dto"
	"github.com/userdeck/userdeck/internal/service"
)

// userFormFields holds the flat fields shared by the signup, create and
// update payloads.
type userFormFields struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
}

// isMultipart reports whether the request carries a multipart/form-data body.
func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// decodeUserForm reads user fields and an optional attachment from either a
// multipart form or a JSON body. The returned cleanup func must be called
// after the upload has been consumed; it is never nil.
func decodeUserForm(r *http.Request, maxUploadSize int64) (userFormFields, *service.FileUpload, func(), error) {
	noop := func() {}

	if !isMultipart(r) {
		var req dto.UserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return userFormFields{}, nil, noop, err
		}
		return userFormFields{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
			Phone:    req.Phone,
			Address:  req.Address,
		}, nil, noop, nil
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return userFormFields{}, nil, noop, err
	}

	fields := userFormFields{
		Name:     r.FormValue("name"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
		Phone:    r.FormValue("phone"),
		Address:  r.FormValue("address"),
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return fields, nil, noop, nil
		}
		return userFormFields{}, nil, noop, err
	}

	upload := &service.FileUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     file,
	}
	return fields, upload, func() { _ = file.Close() }, nil
}
