package main

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"

	"github.com/michalprusek/marianska-sub001/routes"
	"github.com/michalprusek/marianska-sub001/storage"
	"github.com/michalprusek/marianska-sub001/utils"
)

func main() {
	// Only load .env in development
	if os.Getenv("RENDER") == "" {
		godotenv.Load()
	}

	storage.InitializeDB()
	storage.InitializeRedis()

	app := iris.New()
	app.Validator = validator.New()

	// CORS configuration
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	// Minimal middleware - compression only
	app.Use(iris.Compression)

	// JWT Verifiers
	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		err := ctx.ReadJSON(&tokenInput)
		if err != nil {
			return ""
		}
		return tokenInput.RefreshToken
	})

	// Health check endpoint
	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	// Public surface: the booking form and calendar need no account, a
	// booking is managed with the edit token from the confirmation mail.
	rooms := app.Party("/api/rooms")
	{
		rooms.Get("/", routes.GetRooms)
		rooms.Get("/{id:uint}/calendar", routes.GetRoomCalendar)
	}

	app.Get("/api/calendar", routes.GetCalendar)
	app.Get("/api/rates", routes.GetRates)

	bookings := app.Party("/api/bookings")
	{
		bookings.Post("/", routes.CreateBooking)
		bookings.Post("/validate", routes.ValidateBooking)
		bookings.Post("/quote", routes.QuoteBookingPrice)
		bookings.Get("/{id:uint}", routes.GetBooking)
		bookings.Put("/{id:uint}", routes.UpdateBooking)
		bookings.Delete("/{id:uint}", routes.DeleteBooking)
	}

	app.Get("/api/groups/{groupId:string}", routes.GetGroup)

	// Admin session endpoints sit outside the verified party.
	app.Post("/api/admin/login", routes.AdminLogin)
	app.Post("/api/admin/logout", routes.AdminLogout)

	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Get("/bookings", routes.AdminListBookings)
		admin.Get("/bookings/{id:uint}", routes.AdminGetBooking)
		admin.Put("/bookings/{id:uint}", routes.AdminUpdateBooking)
		admin.Patch("/bookings/{id:uint}/paid", routes.AdminMarkBookingPaid)
		admin.Delete("/bookings/{id:uint}", routes.AdminDeleteBooking)

		admin.Post("/blockages", routes.CreateBlockage)
		admin.Get("/blockages", routes.ListBlockages)
		admin.Delete("/blockages/{id:uint}", routes.DeleteBlockage)

		admin.Post("/rooms", routes.AdminCreateRoom)
		admin.Put("/rooms/{id:uint}", routes.AdminUpdateRoom)
		admin.Delete("/rooms/{id:uint}", routes.AdminDeleteRoom)

		admin.Get("/settings", routes.AdminGetSettings)
		admin.Put("/settings", routes.AdminUpdateSettings)

		admin.Get("/groups/{groupId:string}", routes.AdminGetGroup)
		admin.Get("/audit", routes.AdminListAuditLog)
		admin.Get("/stats", routes.AdminStats)
	}

	app.Post("/api/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)

	// Get port from environment
	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	addr := "0.0.0.0:" + port

	fmt.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}
