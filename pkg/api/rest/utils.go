package rest

import (
	"encoding/json"
	"net/http"
	"reflect"

	"github.com/getsentry/sentry-go"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	// Decode body
	contentType := r.Header.Get("Content-Type")
	if contentType == "application/json" || contentType == "" { // default
		err := json.NewDecoder(r.Body).Decode(v)
		if err != nil {
			returnErr(w, http.StatusBadRequest, ErrBadRequest, nil)
			return false
		}
	} else {
		returnErr(w, http.StatusBadRequest, ErrBadRequest, nil)
		return false
	}

	// Get struct type
	structType := reflect.TypeOf(v)
	if structType.Kind() == reflect.Ptr {
		structType = structType.Elem()
	}

	// Validate
	err := validate.Struct(v)
	if err != nil {
		errFields := make(map[string]string, len(err.(validator.ValidationErrors)))
		for _, err := range err.(validator.ValidationErrors) {
			field, _ := structType.FieldByName(err.StructField())
			errFields[field.Tag.Get("json")] = err.Error()
		}
		returnErr(w, http.StatusBadRequest, ErrBadRequest, errFields)
		return false
	}

	return true
}

func returnData(w http.ResponseWriter, code int, data interface{}) {
	marshaled, err := json.Marshal(data)
	if err != nil {
		returnErr(w, http.StatusInternalServerError, ErrInternal, nil)
	} else {
		w.WriteHeader(code)
		w.Write(marshaled)
	}
}

// returnInternal reports the failure and surfaces its message; these are
// unexpected and low stakes enough that leaking the message is fine.
func returnInternal(w http.ResponseWriter, err error) {
	sentry.CaptureException(err)
	returnErr(w, http.StatusInternalServerError, ErrInternal, map[string]string{
		"message": err.Error(),
	})
}

func returnErr(w http.ResponseWriter, code int, errType error, fields map[string]string) {
	marshaled, err := json.Marshal(ErrResp{
		Error:  true,
		Type:   errType.Error(),
		Fields: fields,
	})
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("An error occurred while sending the error response."))
	} else {
		w.WriteHeader(code)
		w.Write(marshaled)
	}
}
