package db

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedPassword is the password of every seeded user.
const SeedPassword = "password"

var seedTables = []string{"messages", "matches", "admins", "profiles", "users"}

// SeedTestData resets the database and populates it with demo data.
//
// Behavior:
//  1. Clears messages, matches, admins, profiles and users.
//  2. Creates 20 users (10 male, 10 female) with bcrypt passwords and profiles.
//  3. Likes each user towards ~6 random users of the other gender; every 3rd
//     like is mirrored so there are guaranteed mutual matches.
//  4. Promotes user 1 to admin.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// --- Fresh start ---
	for _, table := range seedTables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	slog.Info("cleared existing data")

	hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// --- Users and profiles ---
	now := time.Now().UTC()
	for i := uint64(1); i <= 20; i++ {
		gender := "male"
		if i > 10 {
			gender = "female"
		}
		birth := time.Date(1985+int(i%15), time.Month(1+i%12), int(1+i%28), 0, 0, 0, 0, time.UTC)

		user := User{
			ID:           i,
			Email:        fmt.Sprintf("user%d@example.com", i),
			Name:         fmt.Sprintf("user%d", i),
			PasswordHash: string(hash),
			Gender:       gender,
			BirthDate:    &birth,
			Location:     "Berlin",
		}
		user.RefreshAge(now)
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}

		profile := Profile{
			UserID:      i,
			Description: fmt.Sprintf("Hi, I am user%d", i),
			Interests:   "music, travel",
		}
		if err := db.Create(&profile).Error; err != nil {
			return fmt.Errorf("failed to seed profile: %w", err)
		}
	}
	slog.Info("seeded users", "count", 20)

	// --- Likes ---
	likes := 0
	for userID := uint64(1); userID <= 20; userID++ {
		for j := 0; j < 6; j++ {
			likedID := uint64(r.Intn(20) + 1)
			if likedID == userID || (userID <= 10) == (likedID <= 10) {
				continue
			}
			if err := insertLike(db, userID, likedID); err != nil {
				return err
			}
			// guarantee mutual likes every 3rd pair
			if likes%3 == 0 {
				if err := insertLike(db, likedID, userID); err != nil {
					return err
				}
			}
			likes++
		}
	}
	slog.Info("seeded likes", "count", likes)

	if err := db.Create(&Admin{UserID: 1}).Error; err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}
	return nil
}

func insertLike(db *gorm.DB, userID, likedID uint64) error {
	m := Match{UserID: userID, LikedUserID: likedID}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&m).Error; err != nil {
		return fmt.Errorf("failed to seed like: %w", err)
	}
	return nil
}
