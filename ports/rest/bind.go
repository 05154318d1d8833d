package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mitchellh/mapstructure"
)

// MustBind calls Bind and aborts the request if an error is raised
func MustBind(c *gin.Context, target interface{}) error {
	if err := Bind(c, target); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return err
	}
	return nil
}

// Bind maps a request's JSON body and URI params onto a command
func Bind(c *gin.Context, target interface{}) error {
	if reflect.ValueOf(target).Kind() != reflect.Ptr {
		return errors.New("bind target must be a pointer")
	}

	intermediary := make(map[string]interface{})
	if err := bindJSON(c, intermediary); err != nil {
		return err
	}
	bindURI(c, intermediary)

	d, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           target,
		TagName:          "json",
		Squash:           true,
		DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return d.Decode(intermediary)
}

func bindJSON(c *gin.Context, into map[string]interface{}) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(c.Request.Body).Decode(&into); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}

func bindURI(c *gin.Context, into map[string]interface{}) {
	for _, param := range c.Params {
		into[param.Key] = param.Value
	}
}
