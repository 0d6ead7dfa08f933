package server

import (
	"bytes"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/cccteam/ccc"
	"github.com/cccteam/httpio"
	"github.com/cccteam/logger"
	"github.com/go-playground/errors/v5"
	"github.com/jhillyerd/enmime"
)

// ingestMail accepts a batch of raw messages from the mail forwarder. Each
// message is parsed independently; a message that fails to parse is logged
// and skipped without failing the batch.
func (a *App) ingestMail(w http.ResponseWriter, r *http.Request) error {
	ctx, span := ccc.StartTrace(r.Context())
	defer span.End()

	if !a.authorizedForwarder(r) {
		return httpio.NewEncoder(w).ClientMessage(ctx, httpio.NewUnauthorizedMessage("invalid ingestion token"))
	}

	var req struct {
		Mails []struct {
			Raw      string            `json:"raw"`
			RawSize  int               `json:"raw_size"`
			Metadata map[string]string `json:"metadata"`
		} `json:"mails"`
		StartedAt time.Time `json:"started_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return httpio.NewEncoder(w).BadRequestMessage(ctx, "invalid request body")
	}

	type response struct {
		Accepted int `json:"accepted"`
		Rejected int `json:"rejected"`
	}

	res := response{}
	for i, mail := range req.Mails {
		raw, err := base64.StdEncoding.DecodeString(mail.Raw)
		if err != nil {
			logger.FromCtx(ctx).Error(errors.Wrapf(err, "base64 decode of mail %d", i))
			res.Rejected++

			continue
		}

		env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
		if err != nil {
			logger.FromCtx(ctx).Error(errors.Wrapf(err, "enmime.ReadEnvelope() for mail %d", i))
			res.Rejected++

			continue
		}

		attrs := logger.FromCtx(ctx).WithAttributes().
			AddAttribute("from", env.GetHeader("From")).
			AddAttribute("to", env.GetHeader("To")).
			AddAttribute("subject", env.GetHeader("Subject")).
			AddAttribute("size", mail.RawSize)
		for k, v := range mail.Metadata {
			attrs = attrs.AddAttribute("meta_"+k, v)
		}
		attrs.Logger().Info("mail ingested")
		res.Accepted++
	}

	return httpio.NewEncoder(w).Ok(res)
}

// authorizedForwarder checks the Authorization: Token <secret> header with a
// constant time comparison.
func (a *App) authorizedForwarder(r *http.Request) bool {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Token ")
	if !ok {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(token), []byte(a.ingestToken)) == 1
}
