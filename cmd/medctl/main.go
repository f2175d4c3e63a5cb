package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/swiftmeds/client/handler"
	"github.com/swiftmeds/client/internal/api"
	"github.com/swiftmeds/client/internal/config"
	"github.com/swiftmeds/client/internal/dashboard"
	"github.com/swiftmeds/client/internal/delivery"
	"github.com/swiftmeds/client/internal/logger"
	"github.com/swiftmeds/client/internal/notify"
	"github.com/swiftmeds/client/internal/orders"
	"github.com/swiftmeds/client/internal/payment"
	"github.com/swiftmeds/client/internal/pharmacy"
	"github.com/swiftmeds/client/internal/session"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()
	zlog := logger.New()
	defer zlog.Sync()

	sess, err := session.NewFileSession(cfg.SessionFile)
	if err != nil {
		fmt.Println("Session init error:", err)
		return
	}

	stdin := bufio.NewScanner(os.Stdin)

	apiClient := api.New(cfg.BaseURL, sess, zlog)
	gateway := payment.NewConsoleGateway(stdin, os.Stdout)

	h := handler.New(
		orders.New(apiClient, zlog),
		delivery.New(apiClient, sess, zlog),
		payment.New(apiClient, gateway, zlog),
		pharmacy.New(apiClient, zlog),
		notify.NewClient(apiClient, sess, zlog),
		dashboard.New(apiClient, zlog),
		sess,
	)

	fmt.Println("swiftmeds client. Type 'help' for commands.")
	for {
		fmt.Print("> ")
		if !stdin.Scan() {
			return
		}
		fields := strings.Fields(stdin.Text())
		if len(fields) == 0 {
			continue
		}

		cmd, args := fields[0], fields[1:]
		switch cmd {
		case "help":
			h.HandleHelp()
		case "login":
			h.HandleLogin(args)
		case "order":
			h.HandleOrder(ctx, args)
		case "checkout":
			h.HandleCheckout(ctx, args)
		case "pay":
			h.HandlePay(ctx, args)
		case "orders":
			h.HandleOrders(ctx)
		case "cancel":
			h.HandleCancel(ctx, args)
		case "accept-order":
			h.HandleAcceptOrder(ctx, args)
		case "reject-order":
			h.HandleRejectOrder(ctx, args)
		case "deliveries":
			h.HandleDeliveries(ctx)
		case "assign":
			h.HandleAssign(ctx, args)
		case "claim":
			h.HandleClaim(ctx, args)
		case "accept-delivery":
			h.HandleAcceptDelivery(ctx, args)
		case "reject-delivery":
			h.HandleRejectDelivery(ctx, args)
		case "send-otp":
			h.HandleSendOTP(ctx, args)
		case "verify-otp":
			h.HandleVerifyOTP(ctx, args)
		case "complete":
			h.HandleComplete(ctx, args)
		case "refund":
			h.HandleRefund(ctx, args)
		case "restock":
			h.HandleRestock(ctx, args)
		case "restocks":
			h.HandleRestocks(ctx, args)
		case "notifications":
			h.HandleNotifications(ctx, args)
		case "dashboard":
			h.HandleDashboard(ctx)
		case "exit":
			return
		default:
			fmt.Println("Unknown command. Type 'help' for commands.")
		}

		if ctx.Err() != nil {
			return
		}
	}
}
