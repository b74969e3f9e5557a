package main

import (
	appthandler "mediq/internal/appointments/handler"
	apptsrepo "mediq/internal/appointments/repository"
	apptservice "mediq/internal/appointments/service"
	apptvalidator "mediq/internal/appointments/validator"
	authhandler "mediq/internal/auth/handler"
	authrepo "mediq/internal/auth/repository"
	authservice "mediq/internal/auth/service"
	authvalidator "mediq/internal/auth/validator"
	bookinghandler "mediq/internal/bookings/handler"
	bookingsrepo "mediq/internal/bookings/repository"
	bookingservice "mediq/internal/bookings/service"
	bookingvalidator "mediq/internal/bookings/validator"
	doctorhandler "mediq/internal/doctors/handler"
	doctorsrepo "mediq/internal/doctors/repository"
	doctorservice "mediq/internal/doctors/service"
	doctorvalidator "mediq/internal/doctors/validator"
	patienthandler "mediq/internal/patients/handler"
	patientsrepo "mediq/internal/patients/repository"
	patientservice "mediq/internal/patients/service"
	patientvalidator "mediq/internal/patients/validator"
	userhandler "mediq/internal/users/handler"
	usersrepo "mediq/internal/users/repository"
	userservice "mediq/internal/users/service"
	"mediq/pkg/app"
	"mediq/pkg/config"
	"mediq/pkg/events"
	"mediq/pkg/middleware"
	"mediq/pkg/token"

	"github.com/joho/godotenv"
)

const ServiceName = "mediq-api"

func main() {
	// .env is optional; environment variables win in deployment.
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.Client.GracefulShutdown(cfg.Log)

	cfg.Log.Info("Starting MediQ API service")

	// Repositories.
	userRepo := usersrepo.NewMongoUserRepository(cfg)
	tokenRepo := authrepo.NewMongoTokenRepository(cfg)
	doctorRepo := doctorsrepo.NewMongoDoctorRepository(cfg)
	patientRepo := patientsrepo.NewMongoPatientRepository(cfg)
	appointmentRepo := apptsrepo.NewMongoAppointmentRepository(cfg)
	bookingRepo := bookingsrepo.NewMongoBookingRepository(cfg)

	// Token signing and the authentication gate.
	signer := token.NewSigner(
		cfg.AccessTokenSecret,
		cfg.RefreshTokenSecret,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
	)
	guard := middleware.NewAuthGuard(signer, userRepo, cfg.Log)

	// Reservation events are optional; without brokers the services
	// run with publishing disabled.
	var publisher events.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.Log)
		if err != nil {
			cfg.Log.Fatal("Failed to configure event producer", "error", err)
		}
		defer producer.Close()
		publisher = producer
	}

	// Services.
	userService := userservice.NewUserService(userRepo, cfg)
	authService := authservice.NewAuthService(userRepo, tokenRepo, signer, authvalidator.NewAuthValidator(cfg.Log), cfg)
	doctorService := doctorservice.NewDoctorService(doctorRepo, userRepo, doctorvalidator.NewDoctorValidator(cfg.Log), cfg)
	patientService := patientservice.NewPatientService(patientRepo, userRepo, patientvalidator.NewPatientValidator(cfg.Log), cfg)
	appointmentService := apptservice.NewAppointmentService(appointmentRepo, doctorRepo, apptvalidator.NewAppointmentValidator(cfg.Log), publisher, cfg)
	bookingService := bookingservice.NewBookingService(bookingRepo, appointmentRepo, patientRepo, bookingvalidator.NewBookingValidator(cfg.Log), publisher, cfg)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg,
		authhandler.NewAuthHandler(authService, cfg.Log),
		userhandler.NewUserHandler(userService, guard, cfg.Log),
		doctorhandler.NewDoctorHandler(doctorService, guard, cfg.Log),
		patienthandler.NewPatientHandler(patientService, guard, cfg.Log),
		appthandler.NewAppointmentHandler(appointmentService, guard, cfg.Log),
		bookinghandler.NewBookingHandler(bookingService, guard, cfg.Log),
	)
	serverApp.Run()
}
