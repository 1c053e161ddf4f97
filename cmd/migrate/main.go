// Command migrate creates the schema and seeds the reference catalog. It is
// idempotent: rerunning it never duplicates catalog rows.
package main

import (
	"context"
	"os"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/empresasintegra/leykarin/pkg/config"
	"github.com/empresasintegra/leykarin/pkg/model"
	"github.com/empresasintegra/leykarin/pkg/store/postgres"
)

var seedCatalog = map[string][]string{
	"Acoso Laboral": {
		"Hostigamiento o maltrato verbal reiterado",
		"Exclusión o aislamiento injustificado del equipo de trabajo",
		"Asignación de tareas humillantes o imposibles de cumplir",
		"Amenazas reiteradas relacionadas con el empleo",
	},
	"Acoso Sexual": {
		"Insinuaciones o comentarios de connotación sexual no consentidos",
		"Contacto físico no consentido",
		"Solicitud de favores sexuales a cambio de beneficios laborales",
	},
	"Violencia en el Trabajo": {
		"Agresión física por parte de terceros",
		"Agresión verbal o amenazas por parte de terceros",
	},
}

var seedRelations = []string{
	"Trabajador(a) dependiente",
	"Jefatura o supervisor(a)",
	"Práctica profesional",
	"Personal externo o contratista",
	"Otro",
}

var seedTimeBuckets = []string{
	"Menos de 1 mes",
	"Entre 1 y 3 meses",
	"Entre 3 y 6 meses",
	"Más de 6 meses",
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	db, err := postgres.NewStore(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		logger.Fatal("Failed to migrate schema", zap.Error(err))
	}
	logger.Info("Schema migrated")

	if err := seed(db.DB()); err != nil {
		logger.Fatal("Failed to seed catalog", zap.Error(err))
	}
	logger.Info("Catalog seeded")

	if err := bootstrapSuperuser(db, logger); err != nil {
		logger.Fatal("Failed to bootstrap superuser", zap.Error(err))
	}
}

func seed(db *gorm.DB) error {
	for name, statements := range seedCatalog {
		category := model.Category{Name: name}
		if err := db.Where(model.Category{Name: name}).FirstOrCreate(&category).Error; err != nil {
			return err
		}
		for _, statement := range statements {
			item := model.Item{CategoryID: category.ID, Statement: statement}
			err := db.Where(model.Item{CategoryID: category.ID, Statement: statement}).
				FirstOrCreate(&item).Error
			if err != nil {
				return err
			}
		}
	}

	for _, role := range seedRelations {
		relation := model.CompanyRelation{Role: role}
		if err := db.Where(model.CompanyRelation{Role: role}).FirstOrCreate(&relation).Error; err != nil {
			return err
		}
	}

	for _, interval := range seedTimeBuckets {
		bucket := model.TimeBucket{Interval: interval}
		if err := db.Where(model.TimeBucket{Interval: interval}).FirstOrCreate(&bucket).Error; err != nil {
			return err
		}
	}

	return nil
}

// bootstrapSuperuser creates the initial account when the three LEYKARIN_ADMIN
// variables are set and the username is free. The password policy applies.
func bootstrapSuperuser(db *postgres.Store, logger *zap.Logger) error {
	username := os.Getenv("LEYKARIN_ADMIN_USERNAME")
	email := os.Getenv("LEYKARIN_ADMIN_EMAIL")
	password := os.Getenv("LEYKARIN_ADMIN_PASSWORD")
	if username == "" || email == "" || password == "" {
		return nil
	}

	ctx := context.Background()
	admins := postgres.NewAdminRepository(db.DB())

	existing, err := admins.FindByLogin(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		logger.Info("Superuser already exists", zap.String("username", username))
		return nil
	}

	admin := &model.Admin{
		Username:  username,
		Email:     email,
		Name:      "Administrador",
		Superuser: true,
	}
	if err := admins.Create(ctx, admin, password); err != nil {
		return err
	}
	logger.Info("Superuser created", zap.String("username", username))
	return nil
}
