package api

import (
	"bytes"
	"io"
	"mime"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
)

// sonicSerializer implements echo.JSONSerializer with sonic.
type sonicSerializer struct{}

func (sonicSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := sonic.ConfigStd.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (sonicSerializer) Deserialize(c echo.Context, i interface{}) error {
	if err := sonic.ConfigStd.NewDecoder(c.Request().Body).Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON body").SetInternal(err)
	}
	return nil
}

// bodyError is a request body problem reported to the client as-is.
type bodyError struct {
	status  int
	message string
}

// decodeBody reads a JSON request body into an untyped value so that the
// validator can report shape errors itself.
func (s *server) decodeBody(c echo.Context) (any, *bodyError) {
	req := c.Request()

	mediaType, _, err := mime.ParseMediaType(req.Header.Get(echo.HeaderContentType))
	if err != nil || mediaType != echo.MIMEApplicationJSON {
		return nil, &bodyError{http.StatusBadRequest, "Content-Type must be application/json"}
	}

	data, err := io.ReadAll(io.LimitReader(req.Body, s.opts.maxBodySize+1))
	if err != nil {
		return nil, &bodyError{http.StatusBadRequest, "Failed to read request body"}
	}
	if int64(len(data)) > s.opts.maxBodySize {
		return nil, &bodyError{http.StatusRequestEntityTooLarge, "Request body too large"}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &bodyError{http.StatusBadRequest, "No data provided"}
	}

	var payload any
	if err := sonic.ConfigStd.Unmarshal(data, &payload); err != nil {
		return nil, &bodyError{http.StatusBadRequest, "Invalid JSON body"}
	}
	return payload, nil
}
