package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	accountJSON       bool
	accountProducts   bool
	accountCreditCard bool
	accountSSO        bool
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Show account and billing details",
	Long: `Show the active product of your account.

--products lists the products available in your territory, --credit-card
prints the card on file as returned by the API, and --sso exchanges the
session for a community login cookie.`,
	RunE: runAccount,
}

func init() {
	rootCmd.AddCommand(accountCmd)

	accountCmd.Flags().BoolVar(&accountJSON, "json", false, "Print the response as JSON")
	accountCmd.Flags().BoolVar(&accountProducts, "products", false, "List available products")
	accountCmd.Flags().BoolVar(&accountCreditCard, "credit-card", false, "Print the card on file")
	accountCmd.Flags().BoolVar(&accountSSO, "sso", false, "Log in to the community site")
}

func runAccount(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	_, s, _, err := openSession(ctx)
	if err != nil {
		return err
	}
	account := s.Client().Account()

	switch {
	case accountProducts:
		products, err := account.AvailableProducts(ctx)
		if err != nil {
			return err
		}
		if accountJSON {
			return printJSON(products)
		}
		fmt.Printf("Territory: %s\n", products.BillingTerritory)
		fmt.Printf("Product groups: %d\n", len(products.ProductGroups))
		return nil

	case accountCreditCard:
		card, err := account.CreditCard(ctx)
		if err != nil {
			return err
		}
		return printJSON(card)

	case accountSSO:
		if err := account.SSO(ctx); err != nil {
			return err
		}
		for _, c := range s.Client().Cookies() {
			if c.Name == "community_session" {
				fmt.Println("✓ Community session established")
				return nil
			}
		}
		fmt.Println("✓ SSO accepted")
		return nil
	}

	info, err := account.Info(ctx)
	if err != nil {
		return err
	}
	if accountJSON {
		return printJSON(info)
	}

	p := info.ActiveProduct
	fmt.Printf("User:        %s\n", s.Client().Auth().User().Username)
	fmt.Printf("Product:     %s (%s)\n", p.ProductTier, p.ProductType)
	fmt.Printf("Territory:   %s\n", p.BillingTerritory)
	fmt.Printf("Subscriber:  %t\n", info.Subscriber)
	if info.Subscriber {
		fmt.Printf("Price:       %.2f %s (%s)\n", p.Price, p.AcceptedCurrency, p.DurationType)
		fmt.Printf("Auto renew:  %t\n", info.AutoRenew)
	}
	return nil
}
