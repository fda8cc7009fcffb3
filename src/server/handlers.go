package server

import (
	"errors"
	"io"
	"net/http"
	"sort"

	"market-cache/src/broker"
	"market-cache/src/helpers"
	"market-cache/src/models"
	"market-cache/src/reader"
	"market-cache/src/seeder"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// Request helpers
// -----------------------------------------------------------------------------

// bindJSON decodes the body into dst. An empty body is accepted only when
// allowEmpty is set, leaving dst at its zero value.
func bindJSON(c *gin.Context, dst interface{}, allowEmpty bool) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return helpers.NewValidationError("invalid JSON body: %v", err)
	}
	return nil
}

// fail writes the classified error response.
func (s *FastAPIServer) fail(c *gin.Context, op string, err error) {
	status, body := s.Errors.Classify(err)
	if status >= http.StatusInternalServerError {
		s.Errors.Handle(err, op)
	} else {
		s.Logger.Info("%s rejected (%d): %v", op, status, err)
	}
	c.JSON(status, body)
}

// -----------------------------------------------------------------------------
// Seeder / Reader
// -----------------------------------------------------------------------------

func (s *FastAPIServer) seedHistorical(c *gin.Context) {
	var req models.MSeedRequest
	if err := bindJSON(c, &req, true); err != nil {
		s.fail(c, "seed-historical", err)
		return
	}

	summary, err := s.Seeder.SeedBatch(c.Request.Context(), req)
	if err != nil {
		s.fail(c, "seed-historical", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) historicalPrices(c *gin.Context) {
	var req models.MPriceHistoryRequest
	if err := bindJSON(c, &req, false); err != nil {
		s.fail(c, "historical-prices", err)
		return
	}

	resp, err := s.Reader.Read(c.Request.Context(), req)
	if err != nil {
		s.fail(c, "historical-prices", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// -----------------------------------------------------------------------------
// Brokers
// -----------------------------------------------------------------------------

func (s *FastAPIServer) brokerAuthCode(c *gin.Context) {
	if s.AuthCode == nil {
		c.JSON(http.StatusNotFound, helpers.ErrorResponse{Error: "authcode broker is not enabled"})
		return
	}

	var req models.MAuthCodeRequest
	if err := bindJSON(c, &req, false); err != nil {
		s.fail(c, "broker/authcode", err)
		return
	}

	result, err := broker.Link(c.Request.Context(), s.AuthCode, models.MBrokerCredential{Code: req.Code}, s.Normalizer)
	if err != nil {
		s.fail(c, "broker/authcode", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) brokerChecksum(c *gin.Context) {
	if s.Checksum == nil {
		c.JSON(http.StatusNotFound, helpers.ErrorResponse{Error: "checksum broker is not enabled"})
		return
	}

	var req models.MChecksumRequest
	if err := bindJSON(c, &req, false); err != nil {
		s.fail(c, "broker/checksum", err)
		return
	}

	out, err := s.Checksum.HandleAction(c.Request.Context(), req.Action, req.RequestToken, s.Normalizer)
	if err != nil {
		s.fail(c, "broker/checksum", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// -----------------------------------------------------------------------------
// Status
// -----------------------------------------------------------------------------

func (s *FastAPIServer) getConfig(c *gin.Context) {
	ranges := make([]string, 0, len(reader.RangeYears))
	for r := range reader.RangeYears {
		ranges = append(ranges, r)
	}
	sort.Slice(ranges, func(i, j int) bool { return reader.RangeYears[ranges[i]] < reader.RangeYears[ranges[j]] })

	batchSize := s.Config.Seeder.BatchSize
	if batchSize <= 0 {
		batchSize = seeder.DefaultBatchSize
	}
	maxBatch := s.Config.Seeder.MaxBatchSize
	if maxBatch <= 0 {
		maxBatch = seeder.DefaultMaxBatchSize
	}

	c.JSON(http.StatusOK, gin.H{
		"ranges":         ranges,
		"batch_size":     batchSize,
		"max_batch_size": maxBatch,
		"universe_size":  s.Seeder.UniverseSize(),
	})
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"universe":    s.Seeder.UniverseSize(),
		"connections": s.connections.Load(),
		"last_seed":   s.Seeder.LastSummary(),
	})
}
