// Command devtoken mints a bearer token for local testing. Identity is
// normally issued by the external auth service sharing JWT_SECRET.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Dias221467/Friends_Manager/internal/config"
	jwtutil "github.com/Dias221467/Friends_Manager/pkg/jwt"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func main() {
	userID := flag.String("user", "", "user id (hex ObjectID)")
	email := flag.String("email", "", "email claim")
	role := flag.String("role", "user", "role claim")
	flag.Parse()

	if _, err := primitive.ObjectIDFromHex(*userID); err != nil {
		fmt.Fprintln(os.Stderr, "devtoken: -user must be a hex ObjectID")
		os.Exit(2)
	}

	cfg := config.LoadConfig()
	token, err := jwtutil.GenerateToken(*userID, *email, *role, cfg.JWTSecret, cfg.TokenExpiry)
	if err != nil {
		fmt.Fprintln(os.Stderr, "devtoken:", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
