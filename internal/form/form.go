// Package form decodes JSON and form request bodies into input structs.
package form

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"pingcrm-backend/internal/validation"
)

// MaxMemory is the multipart memory limit before parts spill to disk.
const MaxMemory = 10 << 20

// ErrUnsupportedMediaType is returned for bodies that are neither JSON nor
// form encoded.
var ErrUnsupportedMediaType = errors.New("unsupported media type")

// Values returns the request body as a flat map. Empty strings are dropped
// so optional fields decode as absent.
func Values(r *http.Request) (map[string]interface{}, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	values := map[string]interface{}{}

	switch ct {
	case "application/json":
		if err := json.NewDecoder(r.Body).Decode(&values); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode json body: %w", err)
		}
	case "multipart/form-data":
		if err := r.ParseMultipartForm(MaxMemory); err != nil {
			return nil, fmt.Errorf("parse multipart form: %w", err)
		}
		for k, v := range r.MultipartForm.Value {
			if len(v) > 0 {
				values[k] = v[0]
			}
		}
	case "application/x-www-form-urlencoded", "":
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("parse form: %w", err)
		}
		for k := range r.PostForm {
			values[k] = r.PostForm.Get(k)
		}
	default:
		return nil, ErrUnsupportedMediaType
	}

	for k, v := range values {
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			delete(values, k)
		}
	}
	return values, nil
}

// Decode fills dst from the request body, matching keys against `json` tags.
// Strings are weakly converted, so "1" fills a bool and "42" an int64. Values
// that still do not convert are returned as validation.Errors keyed by field.
func Decode(r *http.Request, dst interface{}) error {
	values, err := Values(r)
	if err != nil {
		return err
	}
	return decodeMap(values, dst)
}

func decodeMap(values map[string]interface{}, dst interface{}) error {
	err := decodeInto(values, dst)
	if err == nil {
		return nil
	}

	// Find the fields whose values do not convert and report them by name.
	t := reflect.TypeOf(dst)
	if t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("decode form: %w", err)
	}
	errs := validation.Errors{}
	for k, v := range values {
		single := reflect.New(t.Elem()).Interface()
		if decodeInto(map[string]interface{}{k: v}, single) != nil {
			errs.Add(k, validation.TypeMessage(k, fieldKind(t.Elem(), k)))
		}
	}
	if len(errs) == 0 {
		return fmt.Errorf("decode form: %w", err)
	}
	return errs
}

func decodeInto(values map[string]interface{}, dst interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           dst,
	})
	if err != nil {
		return err
	}
	return dec.Decode(values)
}

// fieldKind returns the kind of the struct field tagged name, looking
// through pointers.
func fieldKind(t reflect.Type, name string) reflect.Kind {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if tag != name {
			continue
		}
		ft := f.Type
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		return ft.Kind()
	}
	return reflect.Invalid
}

// File returns the uploaded file in field, or nil when none was sent.
func File(r *http.Request, field string) (*multipart.FileHeader, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	files := r.MultipartForm.File[field]
	if len(files) == 0 || files[0].Size == 0 {
		return nil, nil
	}
	return files[0], nil
}

// MethodOverride lets form posts reach PUT, PATCH and DELETE routes with a
// _method field or X-HTTP-Method-Override header.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			method := r.Header.Get("X-HTTP-Method-Override")
			if method == "" {
				ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
				if ct == "multipart/form-data" {
					if err := r.ParseMultipartForm(MaxMemory); err == nil {
						method = r.FormValue("_method")
					}
				} else if ct == "application/x-www-form-urlencoded" {
					method = r.FormValue("_method")
				}
			}
			switch m := strings.ToUpper(method); m {
			case http.MethodPut, http.MethodPatch, http.MethodDelete:
				r.Method = m
			}
		}
		next.ServeHTTP(w, r)
	})
}
