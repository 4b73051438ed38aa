package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// uploadFacilityPhotoHandler godoc
//
//	@Summary		Upload a facility photo
//	@Description	Owner-only multipart upload. The image goes to Cloudinary and the secure URL is appended to the facility.
//	@Tags			Facility
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			facilityID	path		int		true	"Facility ID"
//	@Param			image		formData	file	true	"Image file"
//	@Success		201			{object}	map[string]string
//	@Failure		400			{object}	error
//	@Failure		403			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/facilities/{facilityID}/photos [post]
func (app *application) uploadFacilityPhotoHandler(w http.ResponseWriter, r *http.Request) {
	facilityID, err := app.int64Param(r, "facilityID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	facility, err := app.store.Facilities.GetByID(r.Context(), facilityID)
	if err != nil {
		app.workflowError(w, r, err)
		return
	}

	user := getUserFromContext(r)
	if !facility.OwnedBy(user.ID) {
		app.forbiddenResponse(w, r)
		return
	}

	const maxBytes = 15 * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("parse form: %w", err))
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("missing image: %w", err))
		return
	}
	defer file.Close()

	photoURL, err := app.uploadToCloudinary(file, facilityID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Facilities.AddPhotoURL(r.Context(), facilityID, photoURL); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, map[string]string{"photo_url": photoURL}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteFacilityPhotoHandler godoc
//
//	@Summary		Delete a facility photo
//	@Description	Removes the photo from Cloudinary and from the facility record. Call DELETE /facilities/{facilityID}/photos?photo_url={url}.
//	@Tags			Facility
//	@Produce		json
//	@Param			facilityID	path		int		true	"Facility ID"
//	@Param			photo_url	query		string	true	"Photo URL to remove"
//	@Success		204			{string}	string	"No Content"
//	@Failure		400			{object}	error
//	@Failure		403			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/facilities/{facilityID}/photos [delete]
func (app *application) deleteFacilityPhotoHandler(w http.ResponseWriter, r *http.Request) {
	facilityID, err := app.int64Param(r, "facilityID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	photoURL := r.URL.Query().Get("photo_url")
	if photoURL == "" {
		app.badRequestResponse(w, r, fmt.Errorf("missing photo_url"))
		return
	}

	facility, err := app.store.Facilities.GetByID(r.Context(), facilityID)
	if err != nil {
		app.workflowError(w, r, err)
		return
	}

	user := getUserFromContext(r)
	if !facility.OwnedBy(user.ID) {
		app.forbiddenResponse(w, r)
		return
	}

	if err := app.deletePhotoFromCloudinary(photoURL); err != nil {
		app.logger.Errorw("error deleting photo from cloudinary", "error", err)
	}

	if err := app.store.Facilities.RemovePhotoURL(r.Context(), facilityID, photoURL); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// uploadToCloudinary uploads a file with a facility-scoped public ID.
func (app *application) uploadToCloudinary(file io.Reader, facilityID int64) (string, error) {
	publicID := fmt.Sprintf("facility_%d_image_%d", facilityID, time.Now().UnixNano())

	resp, err := app.cld.Upload.Upload(
		context.Background(),
		file,
		uploader.UploadParams{
			Folder:    "facilities",
			PublicID:  publicID,
			Overwrite: api.Bool(false),
		},
	)
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	return resp.SecureURL, nil
}

func (app *application) deletePhotoFromCloudinary(photoURL string) error {
	publicID, err := extractPublicIDFromURL(photoURL)
	if err != nil {
		return fmt.Errorf("failed to extract public ID: %w", err)
	}

	_, err = app.cld.Upload.Destroy(context.Background(), uploader.DestroyParams{
		PublicID: publicID,
	})
	if err != nil {
		return fmt.Errorf("failed to delete photo from Cloudinary: %w", err)
	}

	return nil
}

func extractPublicIDFromURL(photoURL string) (string, error) {
	parsedURL, err := url.Parse(photoURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}

	pathParts := strings.Split(parsedURL.Path, "/")
	for i, part := range pathParts {
		if part == "upload" && i+1 < len(pathParts) {
			return strings.Join(pathParts[i+1:], "/"), nil
		}
	}

	return "", errors.New("failed to extract public ID from URL")
}
