package handlers

import (
	"agency_site_go/config"
	"agency_site_go/middleware"
	"agency_site_go/models"
	"agency_site_go/services"
	"agency_site_go/templates/pages"
	"agency_site_go/templates/partials"
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// contactResetDelay is how long a success or error banner stays before the
// form is idle again
const contactResetDelay = services.DefaultResetDelay

const (
	errorKeyCaptcha = "contact.form.error.captcha"
	errorKeyBusy    = "contact.form.error.busy"
)

// contactRequest is the JSON body of POST /api/contact
type contactRequest struct {
	models.ContactFields
	TurnstileToken string `json:"turnstileToken"`
}

func contactFieldsFromForm(c echo.Context) models.ContactFields {
	return models.ContactFields{
		Name:    c.FormValue("name"),
		Email:   c.FormValue("email"),
		Company: c.FormValue("company"),
		Phone:   c.FormValue("phone"),
		Service: c.FormValue("service"),
		Message: c.FormValue("message"),
	}
}

func submissionRepository(c echo.Context) services.SubmissionRepository {
	if deps := middleware.GetDeps(c); deps != nil && deps.Submissions != nil {
		return deps.Submissions
	}
	return services.NewSubmissionRepository(nil)
}

// verifyCaptcha checks the Turnstile token when a secret is configured
func verifyCaptcha(c echo.Context, cfg *config.Config, token string) bool {
	if cfg.TurnstileSecretKey == "" {
		return true
	}
	if token == "" {
		return false
	}

	valid, err := services.VerifyTurnstileToken(c.Request().Context(), token, cfg.TurnstileSecretKey, c.RealIP())
	if err != nil || !valid {
		log.Printf("[SECURITY] Turnstile verification failed for %s: %v", c.RealIP(), err)
		return false
	}
	return true
}

// submitContact runs one submission through a ContactForm and notifies the
// agency on success
func submitContact(ctx context.Context, cfg *config.Config, repo services.SubmissionRepository, fields models.ContactFields) (services.ContactFormState, error) {
	form := services.NewContactForm(repo, contactResetDelay)
	defer form.Close()

	state, err := form.Submit(ctx, fields)
	if err != nil {
		log.Printf("[WARNING] Contact submission rejected (%s): %v", state.Category, err)
		return state, err
	}

	log.Printf("[INFO] New contact submission %s", state.SubmissionID)
	notifyNewSubmission(cfg, state.SubmissionID, fields)
	return state, nil
}

func notifyNewSubmission(cfg *config.Config, id string, fields models.ContactFields) {
	if cfg.AdminNotifyEmail == "" {
		return
	}

	normalized := services.NormalizeContactFields(fields)
	sub := models.ContactSubmission{
		ID:        id,
		Name:      normalized.Name,
		Email:     normalized.Email,
		Company:   normalized.Company,
		Phone:     normalized.Phone,
		Service:   normalized.Service,
		Message:   normalized.Message,
		Timestamp: time.Now(),
	}
	loc, err := time.LoadLocation(cfg.JobsTimezone)
	if err != nil {
		loc = time.UTC
	}
	email := services.BuildNewSubmissionEmail(sub, cfg.AdminNotifyEmail, cfg.AppURL, cfg.NotifyLang, loc)
	services.SendEmailAsync(cfg, email)
}

// ContactSubmitHandler handles the landing page contact form
func ContactSubmitHandler(c echo.Context) error {
	cfg := middleware.GetConfig(c)
	fields := contactFieldsFromForm(c)
	page := newPage(c, "landing")

	var view partials.ContactFormView
	if !verifyCaptcha(c, cfg, c.FormValue("cf-turnstile-response")) {
		view = partials.ContactFormViewFromState(
			services.ContactFormState{Status: services.FormError, Fields: fields, Category: services.CategoryGeneric},
			page.CSRF, page.TurnstileSiteKey, contactResetDelay.Milliseconds(),
		)
		view.ErrorKey = errorKeyCaptcha
	} else {
		state, err := submitContact(c.Request().Context(), cfg, submissionRepository(c), fields)
		view = partials.ContactFormViewFromState(state, page.CSRF, page.TurnstileSiteKey, contactResetDelay.Milliseconds())
		if errors.Is(err, services.ErrSubmitInProgress) {
			view.Status = services.FormError
			view.ErrorKey = errorKeyBusy
		}
	}

	if middleware.IsHTMX(c) {
		return render(c, http.StatusOK, partials.ContactForm(view))
	}
	return render(c, http.StatusOK, pages.Landing(pages.NewLandingPage(page, view, organizationSchema(c))))
}

// ContactFormHandler returns a fresh, idle contact form partial
func ContactFormHandler(c echo.Context) error {
	return render(c, http.StatusOK, partials.ContactForm(idleContactForm(newPage(c, "landing"))))
}

// ContactAPIHandler accepts a JSON submission and answers with the new ID or
// the error category
func ContactAPIHandler(c echo.Context) error {
	cfg := middleware.GetConfig(c)

	var req contactRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid_request"})
	}

	if !verifyCaptcha(c, cfg, req.TurnstileToken) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "captcha"})
	}

	state, err := submitContact(c.Request().Context(), cfg, submissionRepository(c), req.ContactFields)
	if err != nil {
		return c.JSON(statusForCategory(state.Category), map[string]string{"error": string(state.Category)})
	}
	return c.JSON(http.StatusCreated, map[string]string{"id": state.SubmissionID})
}

func statusForCategory(category services.ErrorCategory) int {
	switch category {
	case services.CategoryMissingFields, services.CategoryInvalidEmail:
		return http.StatusBadRequest
	case services.CategoryNotInitialized, services.CategoryConnectivity:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
