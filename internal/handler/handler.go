package handler

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"facemark/internal/cloudinary"
	"facemark/internal/ledger"
	"facemark/internal/metrics"
	"facemark/internal/person"
	"facemark/internal/queue"
)

// Handler maps the registry and ledger onto the HTTP routes the browser
// face-recognition client consumes.
type Handler struct {
	people    *person.Service
	ledger    *ledger.Service
	events    queue.Queue
	cloud     *cloudinary.Client // nil if Cloudinary not configured
	uploadDir string
}

// New creates a handler.
func New(people *person.Service, led *ledger.Service, events queue.Queue, cloud *cloudinary.Client, uploadDir string) *Handler {
	return &Handler{people: people, ledger: led, events: events, cloud: cloud, uploadDir: uploadDir}
}

// Routes registers all endpoints.
func (h *Handler) Routes(r *gin.Engine) {
	r.POST("/upload", h.Register)
	r.GET("/get-profiles", h.ListProfiles)
	r.GET("/get-all-profiles", h.ListPeople)
	r.GET("/get-user/:id", h.GetPerson)
	r.GET("/get-profile/:name", h.GetPersonByName)
	r.DELETE("/delete-user/:id", h.DeletePerson)
	r.GET("/mark-attendance", h.MarkAttendance)
	r.GET("/get-all-attendance", h.ListAttendance)
	r.DELETE("/delete-all-attendance", h.ClearAttendance)
}

// ---------- Registration ----------

type registerRequest struct {
	Name           string `form:"name"`
	Address        string `form:"address"`
	DOB            string `form:"dob"`
	Role           string `form:"role"`
	SectionOrStaff string `form:"section_or_staff"`
	PhoneNumber    string `form:"phone_number"`
}

// Register handles multipart registration: the seven profile fields plus the
// reference image. The image lands in the upload directory under the
// person's normalized name, and on Cloudinary when configured.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	defer file.Close()

	filename := imageFilename(req.Name, header.Filename)

	reg := person.Registration{
		Name:           req.Name,
		Image:          filename,
		Address:        req.Address,
		DOB:            req.DOB,
		Role:           req.Role,
		SectionOrStaff: req.SectionOrStaff,
		PhoneNumber:    req.PhoneNumber,
	}
	// Validate before touching any storage, local or remote: a rejected
	// registration must not leave an asset behind on Cloudinary.
	if err := reg.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var imageBytes []byte
	if h.cloud != nil {
		imageBytes, err = io.ReadAll(file)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read image"})
			return
		}
		publicID := strings.TrimSuffix(filename, filepath.Ext(filename))
		result, cerr := h.cloud.Upload(c.Request.Context(), imageBytes, publicID)
		if cerr != nil {
			log.Printf("cloudinary upload failed: %v", cerr)
			c.JSON(http.StatusBadGateway, gin.H{"error": "image upload failed"})
			return
		}
		reg.Image = result.SecureURL
	}

	id, err := h.people.Register(c.Request.Context(), reg)
	switch {
	case errors.Is(err, person.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, person.ErrDuplicateName):
		c.JSON(http.StatusConflict, gin.H{"error": "a profile with this name already exists"})
		return
	case err != nil:
		log.Printf("register failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register profile"})
		return
	}

	// Persist the local copy only once the row exists, so a rejected
	// registration leaves no file behind.
	if err := h.saveLocal(file, imageBytes, filename); err != nil {
		log.Printf("saving upload %s failed: %v", filename, err)
	}

	metrics.Registrations.Inc()
	h.publish(c.Request.Context(), queue.Event{
		Type:     queue.EventPersonRegistered,
		PersonID: id,
		Name:     reg.Name,
		Image:    reg.Image,
	})
	c.JSON(http.StatusCreated, gin.H{"id": id, "name": reg.Name, "image": reg.Image})
}

// imageFilename reproduces the original upload naming rule: lowercased name,
// runs of whitespace collapsed to underscores, original extension kept.
func imageFilename(name, original string) string {
	base := strings.Join(strings.Fields(strings.ToLower(name)), "_")
	if base == "" {
		base = "profile"
	}
	return base + filepath.Ext(original)
}

func (h *Handler) saveLocal(file io.ReadSeeker, alreadyRead []byte, filename string) error {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return err
	}
	dst, err := os.Create(filepath.Join(h.uploadDir, filename))
	if err != nil {
		return err
	}
	defer dst.Close()

	if alreadyRead != nil {
		_, err = dst.Write(alreadyRead)
		return err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	_, err = io.Copy(dst, file)
	return err
}

// ---------- Registry reads ----------

// ListProfiles serves the name+image pairs the face client loads at startup.
// An empty gallery is a normal 200.
func (h *Handler) ListProfiles(c *gin.Context) {
	profiles, err := h.people.ListProfiles(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get profiles"})
		return
	}
	c.JSON(http.StatusOK, profiles)
}

// ListPeople returns every full profile; none at all is a 404, matching the
// admin page's expectation.
func (h *Handler) ListPeople(c *gin.Context) {
	people, err := h.people.List(c.Request.Context())
	if errors.Is(err, person.ErrNoProfiles) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No profiles found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profiles"})
		return
	}
	c.JSON(http.StatusOK, people)
}

// GetPerson returns one person by id.
func (h *Handler) GetPerson(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	p, err := h.people.Get(c.Request.Context(), id)
	if errors.Is(err, person.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// GetPersonByName returns one person by display name.
func (h *Handler) GetPersonByName(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return
	}
	p, err := h.people.GetByName(c.Request.Context(), name)
	if errors.Is(err, person.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}
	if errors.Is(err, person.ErrValidation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// DeletePerson removes a person; their attendance records go with them.
func (h *Handler) DeletePerson(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	// Resolve before deleting so the event carries the name and image.
	p, err := h.people.Get(c.Request.Context(), id)
	if errors.Is(err, person.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	if err := h.people.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, person.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	metrics.Deletions.Inc()
	h.publish(c.Request.Context(), queue.Event{
		Type:     queue.EventPersonDeleted,
		PersonID: id,
		Name:     p.Name,
		Image:    p.Image,
	})
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// ---------- Attendance ----------

// MarkAttendance runs the check-in gate. The browser client calls this with
// the matched name and shows the plain-text response verbatim.
func (h *Handler) MarkAttendance(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.String(http.StatusBadRequest, "Name is required.")
		return
	}

	conf, err := h.ledger.CheckIn(c.Request.Context(), name)
	switch {
	case errors.Is(err, ledger.ErrPersonNotFound):
		metrics.CheckIns.WithLabelValues(metrics.ResultUnknownPerson).Inc()
		c.String(http.StatusNotFound, "Person not found")
		return
	case errors.Is(err, ledger.ErrAlreadyMarked):
		metrics.CheckIns.WithLabelValues(metrics.ResultAlreadyMarked).Inc()
		c.String(http.StatusOK, "Error: You already made an attendance today.")
		return
	case err != nil:
		metrics.CheckIns.WithLabelValues(metrics.ResultError).Inc()
		log.Printf("check-in failed for %q: %v", name, err)
		c.String(http.StatusInternalServerError, "Database error")
		return
	}

	metrics.CheckIns.WithLabelValues(metrics.ResultMarked).Inc()
	h.publish(c.Request.Context(), queue.Event{
		Type: queue.EventAttendanceMarked,
		Name: conf.Name,
		Date: conf.Date,
	})
	c.String(http.StatusOK, "Attendance marked for %s at %s", conf.Name, conf.Timestamp)
}

// ListAttendance returns every (name, date, time) entry; an empty ledger is
// reported explicitly, never as an empty success.
func (h *Handler) ListAttendance(c *gin.Context) {
	entries, err := h.ledger.ListAll(c.Request.Context())
	if errors.Is(err, ledger.ErrNoRecords) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No attendance records found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch attendance"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

// ClearAttendance empties the ledger.
func (h *Handler) ClearAttendance(c *gin.Context) {
	removed, err := h.ledger.ClearAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete all attendance records"})
		return
	}
	metrics.LedgerClears.Add(float64(removed))
	c.JSON(http.StatusOK, gin.H{"message": "All attendance records deleted successfully", "deleted": removed})
}

func (h *Handler) publish(ctx context.Context, evt queue.Event) {
	if h.events == nil {
		return
	}
	if evt.ID == "" {
		evt.ID = queue.NewEvent(evt.Type).ID
	}
	if err := h.events.Publish(ctx, evt); err != nil {
		log.Printf("queue publish failed: %v", err)
	}
}
