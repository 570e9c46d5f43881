// files.go - Handles media uploads, listings and downloads

package handlers // Declares the package name

import ( // Import required packages
	"fmt"

	"cafesantander/apperr"
	"cafesantander/response" // Uniform JSON envelope

	"github.com/gin-gonic/gin" // Gin web framework
)

func ListUploads(s *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		files, err := s.Uploads.List()
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, files, "")
	}
}

func ListGallery(s *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		files, err := s.Uploads.ListGallery()
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, files, "")
	}
}

func DownloadFile(s *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		path, err := s.Uploads.Path(c.Param("filename"))
		if err != nil {
			response.Fail(c, err)
			return
		}
		c.FileAttachment(path, c.Param("filename"))
	}
}

func UploadFile(s *Services) gin.HandlerFunc { // Single file in the "file" field
	return func(c *gin.Context) {
		fh, err := c.FormFile("file")
		if err != nil {
			response.Fail(c, apperr.Validation("no file provided"))
			return
		}
		f, err := s.Uploads.Save(fh)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.Created(c, f, "file uploaded")
	}
}

func UploadFiles(s *Services) gin.HandlerFunc { // Up to ten files in the "files" field
	return func(c *gin.Context) {
		form, err := c.MultipartForm()
		if err != nil || len(form.File["files"]) == 0 {
			response.Fail(c, apperr.Validation("no files provided"))
			return
		}
		files, err := s.Uploads.SaveAll(form.File["files"])
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.Created(c, files, fmt.Sprintf("%d file(s) uploaded", len(files)))
	}
}

func DeleteFile(s *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.Uploads.Delete(c.Param("filename")); err != nil {
			response.Fail(c, err)
			return
		}
		response.Message(c, "file deleted")
	}
}
