package http

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/trude-tech/trude-carwash/internal/core"
	"github.com/trude-tech/trude-carwash/internal/ledger"
	"github.com/trude-tech/trude-carwash/internal/service"
)

// SalesHandler handles auth and sales ledger HTTP requests
type SalesHandler struct {
	authService  *service.AuthService
	salesService *service.SalesService
}

// NewSalesHandler creates a new sales handler
func NewSalesHandler(authService *service.AuthService, salesService *service.SalesService) *SalesHandler {
	return &SalesHandler{
		authService:  authService,
		salesService: salesService,
	}
}

// statusForError maps domain errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

func errorJSON(c *fiber.Ctx, err error) error {
	return c.Status(statusForError(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// parseFilterSpec reads the shared filter query parameters.
// Dates use YYYY-MM-DD; source/payment fields accept "All" or empty
// to mean unrestricted.
func parseFilterSpec(c *fiber.Ctx) (ledger.FilterSpec, error) {
	spec := ledger.FilterSpec{
		Source:        strings.TrimSpace(c.Query("source")),
		PaymentMethod: strings.TrimSpace(c.Query("payment_method")),
		PaymentStatus: strings.TrimSpace(c.Query("payment_status")),
	}

	if raw := strings.TrimSpace(c.Query("start_date")); raw != "" {
		parsed, err := time.Parse(core.DateLayout, raw)
		if err != nil {
			return spec, fmt.Errorf("%w: invalid start_date, expected YYYY-MM-DD", core.ErrInvalidInput)
		}
		spec.StartDate = parsed
	}
	if raw := strings.TrimSpace(c.Query("end_date")); raw != "" {
		parsed, err := time.Parse(core.DateLayout, raw)
		if err != nil {
			return spec, fmt.Errorf("%w: invalid end_date, expected YYYY-MM-DD", core.ErrInvalidInput)
		}
		spec.EndDate = parsed
	}

	return spec, spec.Validate()
}

type carWashSaleRequest struct {
	ID            string  `json:"id"`
	Date          string  `json:"date"`
	CarType       string  `json:"car_type"`
	PlateNumber   string  `json:"plate_number"`
	ServiceType   string  `json:"service_type"`
	Price         float64 `json:"price"`
	PaymentMethod string  `json:"payment_method"`
	PaymentStatus string  `json:"payment_status"`
}

func (r carWashSaleRequest) toDomain() (*core.CarWashSale, error) {
	sale := &core.CarWashSale{
		CarType:       strings.TrimSpace(r.CarType),
		PlateNumber:   strings.TrimSpace(r.PlateNumber),
		ServiceType:   strings.TrimSpace(r.ServiceType),
		Price:         r.Price,
		PaymentMethod: strings.TrimSpace(r.PaymentMethod),
		PaymentStatus: core.PaymentStatus(strings.TrimSpace(r.PaymentStatus)),
	}
	if raw := strings.TrimSpace(r.Date); raw != "" {
		parsed, err := time.Parse(core.DateLayout, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid date, expected YYYY-MM-DD", core.ErrInvalidInput)
		}
		sale.Date = parsed
	}
	return sale, nil
}

type drinkSaleRequest struct {
	ID            string  `json:"id"`
	Date          string  `json:"date"`
	DrinkName     string  `json:"drink_name"`
	Quantity      int     `json:"quantity"`
	UnitPrice     float64 `json:"unit_price"`
	PaymentMethod string  `json:"payment_method"`
	PaymentStatus string  `json:"payment_status"`
}

func (r drinkSaleRequest) toDomain() (*core.DrinkSale, error) {
	sale := &core.DrinkSale{
		DrinkName:     strings.TrimSpace(r.DrinkName),
		Quantity:      r.Quantity,
		UnitPrice:     r.UnitPrice,
		PaymentMethod: strings.TrimSpace(r.PaymentMethod),
		PaymentStatus: core.PaymentStatus(strings.TrimSpace(r.PaymentStatus)),
	}
	if raw := strings.TrimSpace(r.Date); raw != "" {
		parsed, err := time.Parse(core.DateLayout, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid date, expected YYYY-MM-DD", core.ErrInvalidInput)
		}
		sale.Date = parsed
	}
	return sale, nil
}

// Login handles credential login
// POST /api/auth/login
func (h *SalesHandler) Login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "username and password are required",
		})
	}

	token, err := h.authService.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	// Set JWT token in HTTP-only cookie
	c.Cookie(&fiber.Cookie{
		Name:     "auth_token",
		Value:    token,
		Expires:  time.Now().Add(7 * 24 * time.Hour),
		HTTPOnly: true,
		Secure:   false, // Set to true in production with HTTPS
		SameSite: "Lax",
	})

	return c.JSON(fiber.Map{
		"message": "login successful",
		"token":   token,
	})
}

// Logout handles user logout
// POST /api/auth/logout
func (h *SalesHandler) Logout(c *fiber.Ctx) error {
	// Clear auth cookie
	c.Cookie(&fiber.Cookie{
		Name:     "auth_token",
		Value:    "",
		Expires:  time.Now().Add(-1 * time.Hour),
		HTTPOnly: true,
	})

	return c.JSON(fiber.Map{
		"message": "logged out successfully",
	})
}

// GetMe returns current user info
// GET /api/auth/me
func (h *SalesHandler) GetMe(c *fiber.Ctx) error {
	username, _ := c.Locals("username").(string)
	user, err := h.authService.GetUserByUsername(c.Context(), username)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to get user",
		})
	}

	return c.JSON(user)
}

// CreateCarWashSale records one car wash sale
// POST /api/carwash-sales
func (h *SalesHandler) CreateCarWashSale(c *fiber.Ctx) error {
	var req carWashSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	sale, err := req.toDomain()
	if err != nil {
		return errorJSON(c, err)
	}

	if err := h.salesService.AddCarWashSale(c.Context(), sale); err != nil {
		return errorJSON(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(sale)
}

// ListCarWashSales lists car wash sales for a filter
// GET /api/carwash-sales?start_date=...&end_date=...&payment_method=...&payment_status=...
func (h *SalesHandler) ListCarWashSales(c *fiber.Ctx) error {
	spec, err := parseFilterSpec(c)
	if err != nil {
		return errorJSON(c, err)
	}

	sales, err := h.salesService.ListCarWashSales(c.Context(), spec)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(sales)
}

// UpdateCarWashSale edits a car wash sale
// PUT /api/carwash-sales/:id
func (h *SalesHandler) UpdateCarWashSale(c *fiber.Ctx) error {
	var req carWashSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	sale, err := req.toDomain()
	if err != nil {
		return errorJSON(c, err)
	}
	sale.ID = c.Params("id")

	if err := h.salesService.UpdateCarWashSale(c.Context(), sale); err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(sale)
}

// SaveCarWashBatch applies a batch of car wash sale edits. Rows fail
// independently; the response lists which rows failed and why.
// PUT /api/carwash-sales/batch
func (h *SalesHandler) SaveCarWashBatch(c *fiber.Ctx) error {
	var reqs []carWashSaleRequest
	if err := c.BodyParser(&reqs); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	sales := make([]core.CarWashSale, 0, len(reqs))
	var parseFailures []core.RowFailure
	for i, req := range reqs {
		sale, err := req.toDomain()
		if err != nil {
			parseFailures = append(parseFailures, core.RowFailure{
				ID:    fmt.Sprintf("row %d", i),
				Error: err.Error(),
			})
			continue
		}
		sale.ID = req.ID
		sales = append(sales, *sale)
	}

	result := h.salesService.SaveCarWashBatch(c.Context(), sales)
	result.Failures = append(parseFailures, result.Failures...)

	status := fiber.StatusOK
	if !result.OK() {
		status = fiber.StatusMultiStatus
	}
	return c.Status(status).JSON(result)
}

// MarkCarWashSalePaid flips an unpaid car wash sale to paid
// POST /api/carwash-sales/:id/mark-paid
func (h *SalesHandler) MarkCarWashSalePaid(c *fiber.Ctx) error {
	if err := h.salesService.MarkCarWashSalePaid(c.Context(), c.Params("id")); err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "sale marked as paid",
	})
}

// CreateDrinkSale records one drink sale
// POST /api/drink-sales
func (h *SalesHandler) CreateDrinkSale(c *fiber.Ctx) error {
	var req drinkSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	sale, err := req.toDomain()
	if err != nil {
		return errorJSON(c, err)
	}

	if err := h.salesService.AddDrinkSale(c.Context(), sale); err != nil {
		return errorJSON(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(sale)
}

// ListDrinkSales lists drink sales for a filter
// GET /api/drink-sales
func (h *SalesHandler) ListDrinkSales(c *fiber.Ctx) error {
	spec, err := parseFilterSpec(c)
	if err != nil {
		return errorJSON(c, err)
	}

	sales, err := h.salesService.ListDrinkSales(c.Context(), spec)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(sales)
}

// UpdateDrinkSale edits a drink sale; the line total is recomputed
// PUT /api/drink-sales/:id
func (h *SalesHandler) UpdateDrinkSale(c *fiber.Ctx) error {
	var req drinkSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	sale, err := req.toDomain()
	if err != nil {
		return errorJSON(c, err)
	}
	sale.ID = c.Params("id")

	if err := h.salesService.UpdateDrinkSale(c.Context(), sale); err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(sale)
}

// SaveDrinkBatch applies a batch of drink sale edits
// PUT /api/drink-sales/batch
func (h *SalesHandler) SaveDrinkBatch(c *fiber.Ctx) error {
	var reqs []drinkSaleRequest
	if err := c.BodyParser(&reqs); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	sales := make([]core.DrinkSale, 0, len(reqs))
	var parseFailures []core.RowFailure
	for i, req := range reqs {
		sale, err := req.toDomain()
		if err != nil {
			parseFailures = append(parseFailures, core.RowFailure{
				ID:    fmt.Sprintf("row %d", i),
				Error: err.Error(),
			})
			continue
		}
		sale.ID = req.ID
		sales = append(sales, *sale)
	}

	result := h.salesService.SaveDrinkBatch(c.Context(), sales)
	result.Failures = append(parseFailures, result.Failures...)

	status := fiber.StatusOK
	if !result.OK() {
		status = fiber.StatusMultiStatus
	}
	return c.Status(status).JSON(result)
}

// MarkDrinkSalePaid flips an unpaid drink sale to paid
// POST /api/drink-sales/:id/mark-paid
func (h *SalesHandler) MarkDrinkSalePaid(c *fiber.Ctx) error {
	if err := h.salesService.MarkDrinkSalePaid(c.Context(), c.Params("id")); err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "sale marked as paid",
	})
}

// DeleteDrinkSale removes a drink sale
// DELETE /api/drink-sales/:id
func (h *SalesHandler) DeleteDrinkSale(c *fiber.Ctx) error {
	if err := h.salesService.DeleteDrinkSale(c.Context(), c.Params("id")); err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "sale deleted",
	})
}
