package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/cbout22/repofiles/internal/fileops"
	"github.com/cbout22/repofiles/internal/github"
)

// defaultBranch is assumed when a request omits the branch.
const defaultBranch = "main"

type moveItem struct {
	Path string `json:"path" validate:"required,relpath"`
	SHA  string `json:"sha"`
	Type string `json:"type" validate:"required,oneof=file dir"`
}

type moveRequest struct {
	Owner       string     `json:"owner" validate:"required,ghname"`
	Repo        string     `json:"repo" validate:"required,ghname"`
	Files       []moveItem `json:"files" validate:"required,min=1,dive"`
	Destination string     `json:"destination" validate:"omitempty,relpath"` // "" means root
	Branch      string     `json:"branch" validate:"omitempty,relpath"`
}

type moveResponse struct {
	Success bool                 `json:"success"`
	Moved   int                  `json:"moved"`
	Skipped int                  `json:"skipped"`
	Details []fileops.MoveDetail `json:"details"`
}

type deleteItem struct {
	Path string `json:"path" validate:"required,relpath"`
	Type string `json:"type" validate:"required,oneof=file dir"`
}

type deleteRequest struct {
	Owner  string       `json:"owner" validate:"required,ghname"`
	Repo   string       `json:"repo" validate:"required,ghname"`
	Branch string       `json:"branch" validate:"omitempty,relpath"`
	Items  []deleteItem `json:"items" validate:"required,min=1,dive"`
}

type deleteResponse struct {
	Success bool `json:"success"`
	Deleted int  `json:"deleted"`
}

type foldersRequest struct {
	Owner string `validate:"required,ghname"`
	Repo  string `validate:"required,ghname"`
	Ref   string `validate:"omitempty,relpath"`
}

type foldersResponse struct {
	Folders   []string `json:"folders"`
	Truncated bool     `json:"truncated"`
}

type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func (s *Server) handleMove(c echo.Context) error {
	var req moveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed request body"})
	}
	if err := s.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{
			Error:   "invalid request",
			Details: validationDetails(err),
		})
	}
	if identityFrom(c).Login != req.Owner {
		return forbidden(c)
	}

	branch := req.Branch
	if branch == "" {
		branch = defaultBranch
	}

	items := make([]fileops.Item, 0, len(req.Files))
	for _, f := range req.Files {
		items = append(items, fileops.Item{
			Path: f.Path,
			Type: fileops.ItemType(f.Type),
			SHA:  f.SHA,
		})
	}

	svc := s.services(identityFrom(c).Token)
	repo := fileops.Repo{Owner: req.Owner, Name: req.Repo}

	result, err := svc.MoveBatch(c.Request().Context(), repo, branch, items, req.Destination)
	if err != nil {
		// Surface which files already moved before the batch aborted.
		var details []string
		if result != nil {
			for _, d := range result.Details {
				details = append(details, fmt.Sprintf("%s -> %s (%s)", d.Src, d.Dest, d.Status))
			}
		}
		return s.writeError(c, err, details)
	}

	return c.JSON(http.StatusOK, moveResponse{
		Success: true,
		Moved:   result.Moved,
		Skipped: result.Skipped,
		Details: result.Details,
	})
}

func (s *Server) handleDelete(c echo.Context) error {
	var req deleteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed request body"})
	}
	if err := s.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{
			Error:   "invalid request",
			Details: validationDetails(err),
		})
	}
	if identityFrom(c).Login != req.Owner {
		return forbidden(c)
	}

	branch := req.Branch
	if branch == "" {
		branch = defaultBranch
	}

	items := make([]fileops.Item, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, fileops.Item{Path: it.Path, Type: fileops.ItemType(it.Type)})
	}

	svc := s.services(identityFrom(c).Token)
	repo := fileops.Repo{Owner: req.Owner, Name: req.Repo}

	result, err := svc.DeleteBatch(c.Request().Context(), repo, branch, items)
	if err != nil {
		return s.writeError(c, err, nil)
	}

	return c.JSON(http.StatusOK, deleteResponse{Success: true, Deleted: result.Deleted})
}

func (s *Server) handleFolders(c echo.Context) error {
	req := foldersRequest{
		Owner: c.QueryParam("owner"),
		Repo:  c.QueryParam("repo"),
		Ref:   c.QueryParam("ref"),
	}
	if err := s.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{
			Error:   "invalid request",
			Details: validationDetails(err),
		})
	}
	if identityFrom(c).Login != req.Owner {
		return forbidden(c)
	}

	ref := req.Ref
	if ref == "" {
		ref = defaultBranch
	}

	svc := s.services(identityFrom(c).Token)
	repo := fileops.Repo{Owner: req.Owner, Name: req.Repo}

	folders, truncated, err := svc.ListFolders(c.Request().Context(), repo, ref)
	if err != nil {
		return s.writeError(c, err, nil)
	}

	return c.JSON(http.StatusOK, foldersResponse{Folders: folders, Truncated: truncated})
}

// forbidden rejects cross-owner access: operations are only permitted
// on repositories owned by the authenticated caller.
func forbidden(c echo.Context) error {
	return c.JSON(http.StatusForbidden, errorResponse{
		Error: "operations are only permitted on your own repositories",
	})
}

// writeError maps an engine failure onto the wire: logical conflicts
// are 400s, provider failures mirror the upstream status (502 for
// upstream 5xx), everything else is a 500.
func (s *Server) writeError(c echo.Context, err error, details []string) error {
	var vErr *fileops.ValidationError
	if errors.As(err, &vErr) {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: vErr.Reason, Details: details})
	}

	var apiErr *github.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.StatusCode
		if status < http.StatusBadRequest || status >= http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		return c.JSON(status, errorResponse{Error: err.Error(), Details: details})
	}

	return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error(), Details: details})
}

// validationDetails flattens validator errors into field-level messages.
func validationDetails(err error) []string {
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return []string{err.Error()}
	}
	details := make([]string, 0, len(vErrs))
	for _, fe := range vErrs {
		details = append(details, fmt.Sprintf("%s: failed %s validation", fe.Namespace(), fe.Tag()))
	}
	return details
}
