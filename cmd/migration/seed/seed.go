package seed

import (
	"fieldops/config"
	. "fieldops/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

func Seed(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("seed")
	log.Info("Seeding development data")

	if err := seedVehicles(db, log); err != nil {
		return err
	}
	if err := seedTeams(db, log); err != nil {
		return err
	}
	if err := seedWorkers(db, log); err != nil {
		return err
	}

	return nil
}

func seedVehicles(db *gorm.DB, log logger.Logger) error {
	vehicles := []Vehicle{
		{Plate: "ABC1D23", Model: "Fiat Strada", Active: true},
		{Plate: "DEF4G56", Model: "VW Saveiro", Active: true},
		{Plate: "GHI7J89", Model: "Ford Ranger", Active: true},
		{Plate: "JKL0M12", Model: "Toyota Hilux", Active: false},
	}

	for _, vehicle := range vehicles {
		var existing Vehicle
		if err := db.First(&existing, "plate = ?", vehicle.Plate).Error; err == nil {
			log.Info("Vehicle already exists", "plate", vehicle.Plate)
			continue
		}
		log.Info("Seeding vehicle", "plate", vehicle.Plate)
		if err := db.Create(&vehicle).Error; err != nil {
			return log.Err("failed to create vehicle", err, "plate", vehicle.Plate)
		}
	}

	return nil
}

func seedTeams(db *gorm.DB, log logger.Logger) error {
	teams := []Team{
		{Name: "North Zone Maintenance", Region: "north", Active: true},
		{Name: "South Zone Maintenance", Region: "south", Active: true},
		{Name: "Emergency Response", Region: "central", Active: true},
	}

	for _, team := range teams {
		var existing Team
		if err := db.First(&existing, "name = ?", team.Name).Error; err == nil {
			log.Info("Team already exists", "name", team.Name)
			continue
		}
		log.Info("Seeding team", "name", team.Name)
		if err := db.Create(&team).Error; err != nil {
			return log.Err("failed to create team", err, "name", team.Name)
		}
	}

	return nil
}

func seedWorkers(db *gorm.DB, log logger.Logger) error {
	workers := []Worker{
		{Name: "Carlos Mendes", Registration: "FW-1001", Active: true},
		{Name: "Ana Souza", Registration: "FW-1002", Active: true},
		{Name: "Joao Pereira", Registration: "FW-1003", Active: true},
		{Name: "Marina Lima", Registration: "FW-1004", Active: true},
		{Name: "Rafael Costa", Registration: "FW-1005", Active: false},
	}

	for _, worker := range workers {
		var existing Worker
		if err := db.First(&existing, "registration = ?", worker.Registration).Error; err == nil {
			log.Info("Worker already exists", "registration", worker.Registration)
			continue
		}
		log.Info("Seeding worker", "registration", worker.Registration)
		if err := db.Create(&worker).Error; err != nil {
			return log.Err("failed to create worker", err, "registration", worker.Registration)
		}
	}

	return nil
}
