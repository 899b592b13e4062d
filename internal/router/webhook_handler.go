package router

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adiretotes/store-api/pkg/models"
	"github.com/adiretotes/store-api/pkg/paystack"
)

// PaystackWebhook receives gateway notifications. The signature is
// checked over the raw body before any parsing, and the event body is
// never trusted beyond its reference: reconciliation re-verifies the
// transaction with the gateway itself.
//
// Paystack only cares about the status code, so responses are plain
// text. Non-2xx makes it redeliver, which is safe because
// reconciliation is idempotent.
func (a *API) PaystackWebhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.String(http.StatusBadRequest, "unreadable body")
		return
	}

	signature := c.GetHeader("x-paystack-signature")
	if !paystack.VerifySignature(body, signature, a.WebhookSecret) {
		log.Printf("Webhook rejected: bad signature from %s", c.ClientIP())
		c.String(http.StatusUnauthorized, "invalid signature")
		return
	}

	var event paystack.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.String(http.StatusBadRequest, "malformed event")
		return
	}
	if event.Data.Reference == "" {
		c.String(http.StatusBadRequest, "missing reference")
		return
	}

	outcome, err := a.Reconciler.Reconcile(c.Request.Context(), event.Data.Reference)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrOrderNotFound):
			// The order may not be visible yet; a redelivery will
			// find it.
			c.String(http.StatusNotFound, "unknown reference")
		case errors.Is(err, models.ErrGateway):
			c.String(http.StatusBadGateway, "verification unavailable")
		default:
			log.Printf("Webhook reconciliation failed for %s: %v", event.Data.Reference, err)
			c.String(http.StatusInternalServerError, "reconciliation failed")
		}
		return
	}

	log.Printf("Webhook %s reconciled %s to %s (applied=%t)", event.Event, outcome.Reference, outcome.Status, outcome.Applied)
	c.String(http.StatusOK, "ok")
}
