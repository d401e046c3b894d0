// Package cep queries the ViaCEP postal code API.
package cep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"nahio/backend/internal/utils"
)

var (
	ErrInvalidCEP = errors.New("cep must have 8 digits")
	ErrNotFound   = errors.New("cep not found")
	ErrNetwork    = errors.New("cep lookup failed")
)

func IsErrInvalidCEP(err error) bool { return errors.Is(err, ErrInvalidCEP) }
func IsErrNotFound(err error) bool   { return errors.Is(err, ErrNotFound) }
func IsErrNetwork(err error) bool    { return errors.Is(err, ErrNetwork) }

// Address is the normalized ViaCEP payload. Field names follow the
// upstream response (localidade is the city, uf the state).
type Address struct {
	CEP        string `json:"cep"`
	Street     string `json:"logradouro"`
	Complement string `json:"complemento"`
	District   string `json:"bairro"`
	City       string `json:"localidade"`
	State      string `json:"uf"`
	IBGE       string `json:"ibge,omitempty"`
	GIA        string `json:"gia,omitempty"`
	DDD        string `json:"ddd,omitempty"`
	SIAFI      string `json:"siafi,omitempty"`
}

type viaCEPResponse struct {
	Address
	Erro bool `json:"erro"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

// Lookup resolves a single CEP. The input may be masked ("01310-100").
func (c *Client) Lookup(ctx context.Context, code string) (*Address, error) {
	clean := utils.Digits(code)
	if len(clean) != 8 {
		return nil, ErrInvalidCEP
	}

	var out viaCEPResponse
	if err := c.getJSON(ctx, fmt.Sprintf("%s/ws/%s/json/", c.baseURL, clean), &out); err != nil {
		return nil, err
	}
	// ViaCEP answers 200 with {"erro": true} for unknown codes.
	if out.Erro {
		return nil, ErrNotFound
	}
	return &out.Address, nil
}

// LookupByAddress is the reverse lookup: state + city + street prefix.
// ViaCEP requires city and street to have at least 3 characters.
func (c *Client) LookupByAddress(ctx context.Context, state, city, street string) ([]Address, error) {
	if len(state) != 2 || len(city) < 3 || len(street) < 3 {
		return nil, fmt.Errorf("%w: state must have 2 and city/street at least 3 characters", ErrInvalidCEP)
	}

	u := fmt.Sprintf("%s/ws/%s/%s/%s/json/",
		c.baseURL,
		url.PathEscape(state),
		url.PathEscape(city),
		url.PathEscape(street),
	)

	var out []Address
	if err := c.getJSON(ctx, u, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, u string, dst interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrNetwork, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	return nil
}

var cepMaskRe = regexp.MustCompile(`^(\d{5})(\d{3})$`)

// Format renders a clean CEP as "12345-678"; anything else is returned
// with non-digits stripped.
func Format(code string) string {
	clean := utils.Digits(code)
	return cepMaskRe.ReplaceAllString(clean, "$1-$2")
}

// Valid reports whether the input contains exactly 8 digits.
func Valid(code string) bool {
	return len(utils.Digits(code)) == 8
}
