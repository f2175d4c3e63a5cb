package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/swiftmeds/client/internal/dashboard"
	"github.com/swiftmeds/client/internal/delivery"
	"github.com/swiftmeds/client/internal/notify"
	"github.com/swiftmeds/client/internal/orders"
	"github.com/swiftmeds/client/internal/payment"
	"github.com/swiftmeds/client/internal/pharmacy"
	"github.com/swiftmeds/client/internal/session"
)

type Handler struct {
	orders    *orders.Client
	delivery  *delivery.Client
	payment   *payment.Client
	pharmacy  *pharmacy.Client
	notify    *notify.Client
	dashboard *dashboard.Fetcher
	session   *session.Session
}

func New(
	ordersClient *orders.Client,
	deliveryClient *delivery.Client,
	paymentClient *payment.Client,
	pharmacyClient *pharmacy.Client,
	notifyClient *notify.Client,
	dashboardFetcher *dashboard.Fetcher,
	sess *session.Session,
) *Handler {
	return &Handler{
		orders:    ordersClient,
		delivery:  deliveryClient,
		payment:   paymentClient,
		pharmacy:  pharmacyClient,
		notify:    notifyClient,
		dashboard: dashboardFetcher,
		session:   sess,
	}
}

func (h *Handler) HandleHelp() {
	fmt.Println(`Available commands:
	login <token> <role> <email> - Store credentials
	order <medicineID> <pharmacyID> <quantity> [address] - Create a single order
	checkout <medID:pharmID:qty>... [--address <addr>] - Cart checkout with payment
	pay <orderID> - Pay for an existing order
	orders - List my orders (grouped)
	cancel <id> - Cancel an order line item
	accept-order <orderID> | reject-order <orderID> [reason] - Pharmacy decision
	deliveries - List deliveries
	assign <deliveryID> <driverID> - Assign a driver
	claim <orderID> - Claim an open delivery
	accept-delivery <orderID> | reject-delivery <orderID> [reason] - Courier decision
	send-otp <orderID> - Send/resend the delivery OTP to the customer
	verify-otp <orderID> <code> - Confirm handoff with the customer's code
	complete <orderID> - Mark delivery complete (no-OTP path)
	refund <orderID> [reason] - Request a refund
	restock <medicineID> <quantity> [notes] - Request a restock
	restocks [approve|reject <id>] - List or decide restock requests
	notifications [read] - Show notifications, optionally mark all read
	dashboard - Show the dashboard for my role
	exit - Exit program`)
}

func (h *Handler) HandleLogin(args []string) {
	if len(args) != 3 {
		fmt.Println("Usage: login <token> <role> <email>")
		return
	}
	if err := h.session.SetCredentials(args[0], args[1], args[2]); err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("Credentials stored for", args[2])
}

func (h *Handler) HandleOrder(ctx context.Context, args []string) {
	if len(args) < 3 {
		fmt.Println("Usage: order <medicineID> <pharmacyID> <quantity> [address]")
		return
	}

	medicineID, err1 := strconv.Atoi(args[0])
	pharmacyID, err2 := strconv.Atoi(args[1])
	quantity, err3 := strconv.Atoi(args[2])
	if err1 != nil || err2 != nil || err3 != nil {
		fmt.Println("Error: medicineID, pharmacyID and quantity must be numbers")
		return
	}

	req := orders.CreateRequest{
		MedicineID: medicineID,
		PharmacyID: pharmacyID,
		Quantity:   quantity,
	}
	if len(args) > 3 {
		req.DeliveryRequired = true
		req.DeliveryAddress = strings.Join(args[3:], " ")
	}

	order, err := h.orders.Create(ctx, req)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Printf("Order %s created (total %s). Pay with: pay %s\n", order.OrderID, order.TotalPrice, order.OrderID)
}

func (h *Handler) HandleCheckout(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: checkout <medID:pharmID:qty>... [--address <addr>]")
		return
	}

	var items []orders.CartItem
	deliveryInfo := orders.DeliveryInfo{}

	for i := 0; i < len(args); i++ {
		if args[i] == "--address" {
			if i+1 >= len(args) {
				fmt.Println("Missing value for --address")
				return
			}
			deliveryInfo.Required = true
			deliveryInfo.Address = strings.Join(args[i+1:], " ")
			break
		}

		parts := strings.Split(args[i], ":")
		if len(parts) != 3 {
			fmt.Println("Invalid item, expected medID:pharmID:qty, got", args[i])
			return
		}
		medicineID, err1 := strconv.Atoi(parts[0])
		pharmacyID, err2 := strconv.Atoi(parts[1])
		quantity, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil {
			fmt.Println("Invalid item, expected numbers in", args[i])
			return
		}
		items = append(items, orders.CartItem{
			MedicineID: medicineID,
			PharmacyID: pharmacyID,
			Quantity:   quantity,
		})
	}

	result, err := h.orders.Checkout(ctx, items, deliveryInfo)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Printf("Created %d items under order %s\n", len(result.Orders), result.SharedID)

	verify, err := h.payment.PayCart(ctx, result.OrderIDs, h.customer())
	if err != nil {
		fmt.Println("Payment failed:", err)
		fmt.Println("Orders stay unpaid; retry with: pay", result.SharedID)
		return
	}
	fmt.Println("Payment captured:", verify.TransactionID)
}

func (h *Handler) HandlePay(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: pay <orderID>")
		return
	}

	result, err := h.payment.Pay(ctx, args[0], h.customer())
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("Payment captured:", result.TransactionID)
}

func (h *Handler) HandleOrders(ctx context.Context) {
	list, err := h.orders.UserOrders(ctx)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	if len(list) == 0 {
		fmt.Println("No orders found")
		return
	}

	for _, group := range orders.GroupByOrderID(list) {
		first := group.Items[0]
		fmt.Printf("- %s [%s] payment=%s\n", group.OrderID, first.OrderStatus, first.PaymentStatus)
		for _, item := range group.Items {
			fmt.Printf("    %s x%d = %s\n", item.MedicineName, item.Quantity, item.TotalPrice)
		}
	}
}

func (h *Handler) HandleCancel(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: cancel <id>")
		return
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Println("Error: id must be a number")
		return
	}

	if _, err := h.orders.Cancel(ctx, id); err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("Order cancelled")
}

func (h *Handler) HandleAcceptOrder(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: accept-order <orderID>")
		return
	}
	if err := h.orders.PharmacyAccept(ctx, args[0]); err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("Order accepted")
}

func (h *Handler) HandleRejectOrder(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: reject-order <orderID> [reason]")
		return
	}
	reason := strings.Join(args[1:], " ")
	if err := h.orders.PharmacyReject(ctx, args[0], reason); err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("Order rejected")
}

func (h *Handler) HandleDeliveries(ctx context.Context) {
	list, err := h.delivery.All(ctx)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	if len(list) == 0 {
		fmt.Println("No deliveries found")
		return
	}
	for _, d := range list {
		driver := "unassigned"
		if d.DriverName != "" {
			driver = d.DriverName
		}
		fmt.Printf("- #%d order %s [%s] driver: %s -> %s\n",
			d.ID, d.Order.OrderID, d.Status, driver, d.DeliveryAddress)
	}
}

func (h *Handler) HandleAssign(ctx context.Context, args []string) {
	if len(args) != 2 {
		fmt.Println("Usage: assign <deliveryID> <driverID>")
		return
	}
	deliveryID, err1 := strconv.Atoi(args[0])
	driverID, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		fmt.Println("Error: ids must be numbers")
		return
	}

	list, err := h.delivery.All(ctx)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	for _, d := range list {
		if d.ID == deliveryID {
			if _, err := h.delivery.Assign(ctx, d, driverID); err != nil {
				fmt.Println("Error:", err)
				return
			}
			fmt.Println("Driver assigned")
			return
		}
	}
	fmt.Println("Error: delivery not found")
}

func (h *Handler) HandleClaim(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: claim <orderID>")
		return
	}
	if err := h.delivery.Claim(ctx, args[0]); err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("Delivery claimed")
}

func (h *Handler) HandleAcceptDelivery(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: accept-delivery <orderID>")
		return
	}
	if err := h.delivery.Accept(ctx, args[0]); err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("Delivery accepted")
}

func (h *Handler) HandleRejectDelivery(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: reject-delivery <orderID> [reason]")
		return
	}
	reason := strings.Join(args[1:], " ")
	if err := h.delivery.Reject(ctx, args[0], reason); err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("Delivery rejected")
}

func (h *Handler) HandleSendOTP(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: send-otp <orderID>")
		return
	}

	list, err := h.delivery.All(ctx)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	for _, d := range list {
		if d.Order.OrderID != args[0] {
			continue
		}
		result, err := h.delivery.GenerateOTP(ctx, d)
		if err != nil {
			fmt.Println("Error:", err)
			return
		}
		switch {
		case result.Existing:
			fmt.Println("A valid OTP is already with the customer; ask them to check their notifications")
		case result.Resend:
			fmt.Println("OTP re-sent to the customer (previous code is now invalid)")
		default:
			fmt.Println("OTP sent to the customer")
		}
		return
	}
	fmt.Println("Error: delivery not found")
}

func (h *Handler) HandleVerifyOTP(ctx context.Context, args []string) {
	if len(args) != 2 {
		fmt.Println("Usage: verify-otp <orderID> <code>")
		return
	}
	if err := h.delivery.VerifyOTP(ctx, args[0], args[1]); err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("Delivery confirmed")
}

func (h *Handler) HandleComplete(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: complete <orderID>")
		return
	}
	if err := h.delivery.MarkComplete(ctx, args[0]); err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("Delivery completed")
}

func (h *Handler) HandleRefund(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: refund <orderID> [reason]")
		return
	}
	orderID := args[0]
	reason := strings.Join(args[1:], " ")

	list, err := h.orders.UserOrders(ctx)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	for _, order := range list {
		if order.OrderID != orderID {
			continue
		}
		result, err := h.payment.RequestRefund(ctx, order, reason)
		if err != nil {
			fmt.Println("Error:", err)
			return
		}
		fmt.Printf("Refund %s for %s, expected by %s\n",
			result.RefundStatus, result.RefundAmount, result.ExpectedBy.Format("2006-01-02"))
		return
	}
	fmt.Println("Error: order not found")
}

func (h *Handler) HandleRestock(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: restock <medicineID> <quantity> [notes]")
		return
	}
	medicineID, err1 := strconv.Atoi(args[0])
	quantity, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		fmt.Println("Error: medicineID and quantity must be numbers")
		return
	}

	req, err := h.pharmacy.RequestRestock(ctx, medicineID, quantity, strings.Join(args[2:], " "))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Printf("Restock request #%d submitted (%s)\n", req.ID, req.Status)
}

func (h *Handler) HandleRestocks(ctx context.Context, args []string) {
	if len(args) == 2 {
		id, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Println("Error: id must be a number")
			return
		}
		switch args[0] {
		case "approve":
			err = h.pharmacy.ApproveRestock(ctx, id)
		case "reject":
			err = h.pharmacy.RejectRestock(ctx, id)
		default:
			fmt.Println("Usage: restocks [approve|reject <id>]")
			return
		}
		if err != nil {
			fmt.Println("Error:", err)
			return
		}
		fmt.Println("Done")
		return
	}

	list, err := h.pharmacy.Restocks(ctx)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	if len(list) == 0 {
		fmt.Println("No restock requests")
		return
	}
	for _, r := range list {
		fmt.Printf("- #%d %s x%d [%s]\n", r.ID, r.Medicine.Name, r.Quantity, r.Status)
	}
}

func (h *Handler) HandleNotifications(ctx context.Context, args []string) {
	list, err := h.notify.Fetch(ctx)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	if len(list) == 0 {
		fmt.Println("No notifications")
		return
	}

	for _, n := range list {
		marker := " "
		if !n.IsRead {
			marker = "*"
		}
		fmt.Printf("%s [%s] %s: %s\n", marker, n.Type, n.Title, n.Message)
	}

	if len(args) == 1 && args[0] == "read" {
		if err := h.notify.MarkAllRead(ctx, list); err != nil {
			fmt.Println("Error:", err)
			return
		}
		fmt.Println("All notifications marked read")
	}
}

func (h *Handler) HandleDashboard(ctx context.Context) {
	switch h.session.Role() {
	case "pharmacy":
		data, err := h.dashboard.Pharmacy(ctx)
		if err != nil {
			fmt.Println("Error:", err)
			return
		}
		fmt.Printf("Medicines: %d (low stock: %d) | Today's orders: %d | Revenue: %s\n",
			data.Stats.TotalMedicines, data.Stats.LowStockItems,
			data.Stats.TodayOrders, data.Stats.Revenue)
	case "delivery":
		data, err := h.dashboard.Delivery(ctx)
		if err != nil {
			fmt.Println("Error:", err)
			return
		}
		fmt.Printf("Active: %d | Completed today: %d | Pending: %d\n",
			data.Stats.ActiveDeliveries, data.Stats.CompletedToday, data.Stats.PendingOrders)
	default:
		snap, err := h.dashboard.Snapshot(ctx)
		if err != nil {
			fmt.Println("Error:", err)
			return
		}
		fmt.Printf("Orders: %d | Deliveries: %d | Users: %d | Pharmacies: %d | Medicines: %d\n",
			len(snap.Orders), len(snap.Deliveries), len(snap.Users),
			len(snap.Pharmacies), len(snap.Medicines))
	}
}

func (h *Handler) customer() payment.Customer {
	return payment.Customer{
		Name:  h.session.Email(),
		Email: h.session.Email(),
	}
}
