package controllers

import (
	"log"
	"net/http"
	"net/url"

	"linklytics-be/internal/analytics"
	"linklytics-be/internal/entities"
	"linklytics-be/internal/middleware"
	"linklytics-be/internal/models"
	"linklytics-be/internal/plan"
	"linklytics-be/internal/service"

	"github.com/gin-gonic/gin"
)

type ShortenerController struct {
	urlService      service.URLService
	redirectService service.RedirectService
	classifier      *analytics.Classifier
	sink            *analytics.Sink
}

func NewShortenerController(
	urlService service.URLService,
	redirectService service.RedirectService,
	classifier *analytics.Classifier,
	sink *analytics.Sink,
) *ShortenerController {
	return &ShortenerController{
		urlService:      urlService,
		redirectService: redirectService,
		classifier:      classifier,
		sink:            sink,
	}
}

func callerIdentity(c *gin.Context) (string, plan.Plan) {
	return c.GetString(middleware.ContextUserID), plan.Normalize(c.GetString(middleware.ContextPlan))
}

// Generate handles POST /api/v1/generate
func (sc *ShortenerController) Generate(c *gin.Context) {
	var req models.GenerateURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	userID, tier := callerIdentity(c)
	response, err := sc.urlService.Generate(c.Request.Context(), userID, tier, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "Short URL generated",
		"data":    response,
	})
}

// Update handles PATCH /api/v1/update/:shortCode
func (sc *ShortenerController) Update(c *gin.Context) {
	var req models.UpdateURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	userID, tier := callerIdentity(c)
	if err := sc.urlService.Update(c.Request.Context(), c.Param("shortCode"), userID, tier, &req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "URL updated successfully"})
}

// Delete handles DELETE /api/v1/delete/:shortCode
func (sc *ShortenerController) Delete(c *gin.Context) {
	userID, _ := callerIdentity(c)
	if err := sc.urlService.Delete(c.Request.Context(), c.Param("shortCode"), userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Short URL deleted"})
}

// List handles GET /api/v1/urls
func (sc *ShortenerController) List(c *gin.Context) {
	userID, _ := callerIdentity(c)
	urls, err := sc.urlService.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": urls})
}

// Details handles GET /api/v1/details/:shortCode
func (sc *ShortenerController) Details(c *gin.Context) {
	userID, _ := callerIdentity(c)
	details, err := sc.urlService.Details(c.Request.Context(), c.Param("shortCode"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": details})
}

// Validate handles GET /:shortCode, the client-side pre-check before
// navigating. No redirect, no click capture.
func (sc *ShortenerController) Validate(c *gin.Context) {
	res, err := sc.redirectService.Check(c.Request.Context(), c.Param("shortCode"))
	if err != nil {
		respondError(c, err)
		return
	}

	switch res.State {
	case service.StateNotFound:
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "Short URL not found"})
	case service.StateBlocked:
		c.JSON(http.StatusForbidden, gin.H{"status": "error", "message": "This URL is currently paused. Please try again later."})
	default:
		c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Short URL is valid"})
	}
}

// Redirect handles GET /redirect/:shortCode. The 302 is written before the
// click event is handed to the sink, so analytics never delay the visitor.
func (sc *ShortenerController) Redirect(c *gin.Context) {
	code := c.Param("shortCode")

	res, err := sc.redirectService.Resolve(
		c.Request.Context(), code, c.Request.URL.Query(), c.GetHeader("User-Agent"))
	if err != nil {
		log.Printf("redirect resolution failed for %s: %v", code, err)
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}

	switch res.State {
	case service.StateNotFound:
		c.String(http.StatusNotFound, "URL not found or has been temporarily paused.")
		return
	case service.StateBlocked:
		c.String(http.StatusForbidden, "This URL is currently paused. Please try again later.")
		return
	}

	// Click capture is premium-only. The visitor cookie must go out with
	// the redirect response, so classification happens before the 302;
	// persistence happens after and never blocks or fails the visitor.
	var pending *entities.ClickEvent
	if res.Premium && sc.classifier != nil {
		dest, parseErr := url.Parse(res.Destination)
		if parseErr == nil {
			cookie, _ := c.Cookie(analytics.VisitorCookieName)
			evt, setCookie := sc.classifier.Classify(analytics.RequestMeta{
				UserAgent:     c.GetHeader("User-Agent"),
				Referrer:      c.GetHeader("Referer"),
				ForwardedFor:  c.GetHeader("X-Forwarded-For"),
				RemoteAddr:    c.Request.RemoteAddr,
				VisitorCookie: cookie,
			}, dest, res.Link.ShortCode, res.Link.ID)
			if setCookie {
				c.SetCookie(analytics.VisitorCookieName, res.Link.ShortCode,
					analytics.VisitorCookieMaxAge, "/", "", false, true)
			}
			pending = evt
		}
	}

	c.Redirect(http.StatusFound, res.Destination)

	if pending != nil && sc.sink != nil {
		sc.sink.Enqueue(pending)
	}
}
