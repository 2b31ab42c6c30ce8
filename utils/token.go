package utils

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// JwtCustomClaim carries the resolved identity for a session.
// Employee sessions (PIN + kiosk) are bound to a single store; manager
// sessions carry the set of managed store ids.
type JwtCustomClaim struct {
	ProfileId int    `json:"profile_id"`
	Role      string `json:"role"`
	StoreId   int    `json:"store_id,omitempty"`
	StoreIds  []int  `json:"store_ids,omitempty"`
	jwt.StandardClaims
}

const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
)

var jwtSecret = []byte(getJwtSecret())

func getJwtSecret() string {
	secret := os.Getenv("API_SECRET")
	if secret == "" {
		return "ShiftDesk-Secret"
	}
	return secret
}

func tokenLifespan() time.Duration {
	hours, err := strconv.Atoi(os.Getenv("TOKEN_HOUR_LIFESPAN"))
	if err != nil || hours <= 0 {
		hours = 12
	}
	return time.Hour * time.Duration(hours)
}

// JwtGenerateEmployee issues a kiosk session token bound to one store.
func JwtGenerateEmployee(profileId int, storeId int) (string, error) {
	return signClaims(&JwtCustomClaim{
		ProfileId: profileId,
		Role:      RoleEmployee,
		StoreId:   storeId,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(tokenLifespan()).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	})
}

// JwtGenerateManager issues a manager token scoped to the managed stores.
func JwtGenerateManager(profileId int, storeIds []int) (string, error) {
	return signClaims(&JwtCustomClaim{
		ProfileId: profileId,
		Role:      RoleManager,
		StoreIds:  storeIds,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(tokenLifespan()).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	})
}

func signClaims(claims *JwtCustomClaim) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err := t.SignedString(jwtSecret)
	if err != nil {
		return "", err
	}
	return token, nil
}

func JwtValidate(token string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(token, &JwtCustomClaim{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("there's a problem with the signing method")
		}
		return jwtSecret, nil
	})
}
