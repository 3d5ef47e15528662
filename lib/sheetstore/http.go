package sheetstore

import (
	"context"
	"fmt"
	"time"

	"pricewatch/lib/telemetry"

	"github.com/go-resty/resty/v2"
)

// HTTPConfig points an HTTPStore at a sheet bridge service.
type HTTPConfig struct {
	BaseURL       string `json:"base_url"`
	Token         string `json:"token"`
	SpreadsheetID string `json:"spreadsheet_id"`
	SheetName     string `json:"sheet_name"`
	// defaults to 30s
	Timeout time.Duration `json:"-"`
}

// HTTPStore talks to the sheet over a JSON bridge: GET /values for reads,
// POST /values:batchUpdate for mutations. Quota rejections surface as 429
// TransportErrors so the sync layer can retry them.
type HTTPStore struct {
	client    *resty.Client
	sheetName string
}

func NewHTTP(cfg HTTPConfig) *HTTPStore {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = time.Second * 30
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetPathParam("spreadsheet", cfg.SpreadsheetID)
	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}
	telemetry.InstrumentResty(client, "pricewatch.lib.sheetstore")
	return &HTTPStore{client: client, sheetName: cfg.SheetName}
}

type wireCell struct {
	Text   string   `json:"text,omitempty"`
	Number *float64 `json:"number,omitempty"`
	Fill   *Color   `json:"fill,omitempty"`
	Color  *Color   `json:"color,omitempty"`
}

type readResponse struct {
	Rows [][]wireCell `json:"rows"`
}

type wireMutation struct {
	Row      int        `json:"row"`
	StartCol int        `json:"startCol"`
	EndCol   int        `json:"endCol"`
	Cells    []wireCell `json:"cells,omitempty"`
	Fill     *Color     `json:"fill,omitempty"`
	Color    *Color     `json:"color,omitempty"`
}

type batchRequest struct {
	Sheet     string         `json:"sheet"`
	Mutations []wireMutation `json:"mutations"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func (s *HTTPStore) ReadRange(ctx context.Context, rng string) ([][]Value, error) {
	var (
		body   readResponse
		apiErr errorResponse
	)
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("sheet", s.sheetName).
		SetQueryParam("range", rng).
		SetResult(&body).
		SetError(&apiErr).
		Get("/spreadsheets/{spreadsheet}/values")
	if err != nil {
		return nil, fmt.Errorf("read range %q: %w", rng, err)
	}
	if resp.IsError() {
		return nil, &TransportError{Status: resp.StatusCode(), Op: "read range", Msg: apiErr.Message}
	}

	out := make([][]Value, len(body.Rows))
	for i, row := range body.Rows {
		cells := make([]Value, len(row))
		for j, c := range row {
			if c.Number != nil {
				cells[j] = NumberValue(*c.Number)
			} else {
				cells[j] = TextValue(c.Text)
			}
		}
		out[i] = cells
	}
	return out, nil
}

func (s *HTTPStore) BatchMutate(ctx context.Context, muts []Mutation) error {
	if len(muts) == 0 {
		return nil
	}
	req := batchRequest{Sheet: s.sheetName, Mutations: make([]wireMutation, 0, len(muts))}
	for _, m := range muts {
		start, end := m.Span()
		wm := wireMutation{
			Row:      m.Row,
			StartCol: start,
			EndCol:   end,
			Fill:     m.Fill,
			Color:    m.TextColor,
		}
		for _, v := range m.Values {
			if v.Numeric {
				n := v.Number
				wm.Cells = append(wm.Cells, wireCell{Number: &n})
			} else {
				wm.Cells = append(wm.Cells, wireCell{Text: v.Text})
			}
		}
		req.Mutations = append(req.Mutations, wm)
	}

	var apiErr errorResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(req).
		SetError(&apiErr).
		Post("/spreadsheets/{spreadsheet}/values:batchUpdate")
	if err != nil {
		return fmt.Errorf("batch mutate: %w", err)
	}
	if resp.IsError() {
		return &TransportError{Status: resp.StatusCode(), Op: "batch mutate", Msg: apiErr.Message}
	}
	return nil
}
