package main

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"hostelms/internal/config"
	"hostelms/internal/database"
	"hostelms/internal/domain"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadRuntimeConfig()
	if err != nil {
		log.Fatal(err)
	}
	dsn := cfg.DatabaseURL
	if dsn == "" {
		dsn = "hostel.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running migrations...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("Migrate failed:", err)
	}

	// Cleanup old data (in safe order to avoid foreign key errors)
	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM room_requests")
	db.Exec("DELETE FROM students")
	db.Exec("DELETE FROM rooms")
	db.Exec("DELETE FROM hostels")
	db.Exec("DELETE FROM users")

	// ================== HOSTEL ==================
	log.Println("Creating hostel...")
	hostel := domain.Hostel{
		Name:            "Vyas Bhawan",
		AllotmentStatus: domain.PhaseClosed,
		IsActive:        true,
	}
	db.Create(&hostel)

	// ================== ADMIN ==================
	adminHash, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	admin := domain.User{
		Email:        "warden@hostel.example.com",
		PasswordHash: string(adminHash),
		FullName:     "Hostel Warden",
		Role:         domain.RoleAdmin,
		Status:       domain.UserActive,
	}
	db.Create(&admin)
	log.Println("Admin created: warden@hostel.example.com / admin123")

	// ================== ROOMS ==================
	log.Println("Creating rooms...")
	blocks := []string{"a", "b", "c"}
	count := 0
	for _, block := range blocks {
		for floor := 1; floor <= 3; floor++ {
			for n := 1; n <= 10; n++ {
				room := domain.Room{
					Block:            block,
					RoomNumber:       fmt.Sprintf("%d%02d", floor, n),
					Floor:            floor,
					Capacity:         1,
					AllocationStatus: domain.RoomAvailable,
					IsActive:         true,
					YearlyRent:       75500,
				}
				db.Create(&room)
				count++
			}
		}
	}

	log.Printf("Seed complete: 1 hostel, 1 admin, %d rooms", count)
}
