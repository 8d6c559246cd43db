// User command group: registration and subscription management.
package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/qanoon-app/lawstore/internal/auth"
	"github.com/qanoon-app/lawstore/pkg/types"
)

var (
	userRegisterPassword string
	userRegisterName     string
	userLoginPassword    string
)

// userView is the JSON shape of an account. The password hash never
// leaves the store through the CLI.
type userView struct {
	UserID             string     `json:"userId"`
	Email              string     `json:"email"`
	FullName           string     `json:"fullName,omitempty"`
	SubscriptionType   string     `json:"subscriptionType"`
	SubscriptionExpiry *time.Time `json:"subscriptionExpiry,omitempty"`
	LastLogin          *time.Time `json:"lastLogin,omitempty"`
	IsActive           bool       `json:"isActive"`
	CreatedAt          time.Time  `json:"createdAt"`
}

func viewOf(u *types.User) userView {
	return userView{
		UserID:             u.UserID,
		Email:              u.Email,
		FullName:           u.FullName,
		SubscriptionType:   u.SubscriptionType,
		SubscriptionExpiry: u.SubscriptionExpiry,
		LastLogin:          u.LastLogin,
		IsActive:           u.IsActive,
		CreatedAt:          u.CreatedAt,
	}
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users and subscriptions",
}

var userRegisterCmd = &cobra.Command{
	Use:   "register <email>",
	Short: "Register a new user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserRegister,
}

var userLoginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Verify credentials and stamp the last login time",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserLogin,
}

var userShowCmd = &cobra.Command{
	Use:   "show <email>",
	Short: "Show a user and their active subscription",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserShow,
}

var userUpgradeCmd = &cobra.Command{
	Use:   "upgrade <email> <plan>",
	Short: "Upgrade a user to a new plan (monthly or yearly)",
	Args:  cobra.ExactArgs(2),
	RunE:  runUserUpgrade,
}

func init() {
	userRegisterCmd.Flags().StringVar(&userRegisterPassword, "password", "", "account password (required)")
	userRegisterCmd.Flags().StringVar(&userRegisterName, "name", "", "full name")
	_ = userRegisterCmd.MarkFlagRequired("password")

	userLoginCmd.Flags().StringVar(&userLoginPassword, "password", "", "account password (required)")
	_ = userLoginCmd.MarkFlagRequired("password")

	userCmd.AddCommand(userRegisterCmd)
	userCmd.AddCommand(userLoginCmd)
	userCmd.AddCommand(userShowCmd)
	userCmd.AddCommand(userUpgradeCmd)
}

func runUserRegister(cmd *cobra.Command, args []string) error {
	mgr := auth.NewManager(db, logger)
	id, err := mgr.Register(args[0], userRegisterPassword, userRegisterName)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return emit(map[string]string{"userId": id, "email": args[0]}, func() {
		fmt.Printf("Registered user: %s\n", id)
	})
}

func runUserLogin(cmd *cobra.Command, args []string) error {
	mgr := auth.NewManager(db, logger)
	session, err := mgr.Login(args[0], userLoginPassword)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	u := session.User()
	return emit(viewOf(u), func() {
		fmt.Printf("Logged in as %s (%s) plan=%s\n", u.Email, u.UserID, u.SubscriptionType)
	})
}

func runUserShow(cmd *cobra.Command, args []string) error {
	u, err := db.Users().GetByEmail(args[0])
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	sub, err := db.Subscriptions().ActiveForUser(u.UserID)
	if err != nil {
		return fmt.Errorf("get subscription: %w", err)
	}
	return emit(map[string]any{"user": viewOf(u), "subscription": sub}, func() {
		fmt.Printf("%s (%s) plan=%s\n", u.Email, u.UserID, u.SubscriptionType)
		if sub != nil && sub.EndDate != nil {
			fmt.Printf("  subscription %s until %s\n", sub.PlanType, sub.EndDate.Format("2006-01-02"))
		}
	})
}

func runUserUpgrade(cmd *cobra.Command, args []string) error {
	u, err := db.Users().GetByEmail(args[0])
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	mgr := auth.NewManager(db, logger)
	sub, err := mgr.UpgradeSubscription(u.UserID, args[1])
	if err != nil {
		return fmt.Errorf("upgrade: %w", err)
	}
	return emit(sub, func() {
		until := "never"
		if sub.EndDate != nil {
			until = sub.EndDate.Format("2006-01-02")
		}
		fmt.Printf("%s upgraded to %s until %s\n", u.Email, sub.PlanType, until)
	})
}
