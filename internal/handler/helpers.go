package handler

import (
	"net/http"
	"reflect"
	"time"

	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/apierror"
	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/dto"
	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// bindQueryAndValidate does the same for query-string bindings.
func bindQueryAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// fuelRecordView maps the persistence model to its API shape.
func fuelRecordView(r *model.FuelRecord) *dto.FuelRecordView {
	if r == nil {
		return nil
	}
	return &dto.FuelRecordView{
		ID:              r.ID.String(),
		TruckNo:         r.TruckNo,
		GoingDo:         r.GoingDo,
		ReturnDo:        r.ReturnDo,
		Start:           r.Start,
		From:            r.From,
		To:              r.To,
		OriginalGoingTo: r.OriginalGoingTo,
		TotalLts:        r.TotalLts,
		Extra:           r.Extra,
		Balance:         r.Balance,
		Checkpoints:     r.Checkpoints(),
		JourneyStatus:   r.JourneyStatus,
		QueueOrder:      r.QueueOrder,
		IsLocked:        r.IsLocked,
		PendingReason:   r.PendingConfigReason,
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
	}
}
