package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eduardofloriani/serverless-ecommerce/pkg/models"
	rediskv "github.com/eduardofloriani/serverless-ecommerce/pkg/redis"
)

// ANSI
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Dim    = "\033[2m"
	White  = "\033[97m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Red    = "\033[31m"
	Cyan   = "\033[36m"
	BgCyan = "\033[46m"
	Black  = "\033[30m"
)

var (
	apiBase = envOr("API_BASE_URL", "http://localhost:8080")
	events  *rediskv.EventStore
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func initEventStore() {
	addr := envOr("REDIS_ADDR", "localhost:6379")
	client := redis.NewClient(&redis.Options{Addr: addr})
	events = rediskv.NewEventStore(client)
}

func main() {
	initEventStore()
	clearScreen()
	printBanner()
	shellLoop()
}

func shellLoop() {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("%secommerce>%s ", Cyan, Reset)

		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch {
		case input == "exit" || input == "quit" || input == "q":
			fmt.Printf("\n%s%s  Bye %s\n\n", BgCyan, Black, Reset)
			return

		case input == "help" || input == "?":
			printHelp()

		case input == "clear" || input == "cls":
			clearScreen()
			printBanner()

		case input == "health" || input == "h":
			printHealthChecks()

		case input == "up":
			shellExec("docker", "compose", "up", "-d", "--build")

		case input == "down":
			shellExec("docker", "compose", "down", "-v")

		case strings.HasPrefix(input, "logs"):
			parts := strings.Fields(input)
			if len(parts) > 1 {
				shellExec("docker", "compose", "logs", "-f", "--tail=50", parts[1])
			} else {
				shellExec("docker", "compose", "logs", "-f", "--tail=30")
			}

		// --- Products ---
		case strings.HasPrefix(input, "create-product"):
			parts := strings.Fields(input)
			if len(parts) < 4 {
				fmt.Printf("  %sUsage: create-product <name> <code> <price>%s\n", Red, Reset)
			} else {
				createProduct(parts[1], parts[2], parts[3])
			}

		case input == "products" || input == "list-products":
			apiGet("/products")

		case strings.HasPrefix(input, "get-product "):
			apiGet("/products/" + strings.TrimPrefix(input, "get-product "))

		case strings.HasPrefix(input, "delete-product "):
			apiDelete("/products/" + strings.TrimPrefix(input, "delete-product "))

		// --- Orders ---
		case strings.HasPrefix(input, "create-order"):
			parts := strings.Fields(input)
			if len(parts) < 3 {
				fmt.Printf("  %sUsage: create-order <email> <productId> [productId...]%s\n", Red, Reset)
			} else {
				createOrder(parts[1], parts[2:])
			}

		case input == "orders" || input == "list-orders":
			apiGet("/orders")

		case strings.HasPrefix(input, "orders "):
			apiGet("/orders?email=" + strings.TrimPrefix(input, "orders "))

		case strings.HasPrefix(input, "delete-order"):
			parts := strings.Fields(input)
			if len(parts) < 3 {
				fmt.Printf("  %sUsage: delete-order <email> <orderId>%s\n", Red, Reset)
			} else {
				apiDelete(fmt.Sprintf("/orders?email=%s&orderId=%s", parts[1], parts[2]))
			}

		// --- Audit events ---
		case input == "events":
			showEvents("#")

		case input == "events product":
			showEvents("#product_")

		case input == "events order":
			showEvents("#order_")

		case strings.HasPrefix(input, "events "):
			showEvents("#product_" + strings.TrimPrefix(input, "events "))

		default:
			// Pass through to system shell
			shellExecRaw(input)
		}

		fmt.Println()
	}
}

func createProduct(name, code, price string) {
	p, err := strconv.ParseFloat(price, 64)
	if err != nil {
		fmt.Printf("  %s[x] invalid price: %s%s\n", Red, price, Reset)
		return
	}
	body := fmt.Sprintf(`{"productName":%q,"code":%q,"price":%v}`, name, code, p)
	apiPost("/products", body)
}

func createOrder(email string, productIDs []string) {
	ids, _ := json.Marshal(productIDs)
	body := fmt.Sprintf(`{"email":%q,"productIds":%s,"payment":"CASH"}`, email, ids)
	apiPost("/orders", body)
}

func showEvents(partitionPrefix string) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	items, err := events.Scan(ctx, partitionPrefix)
	if err != nil {
		fmt.Printf("  %s[x] %v%s\n", Red, err, Reset)
		return
	}
	if len(items) == 0 {
		fmt.Printf("  %sno events (expired or none recorded)%s\n", Dim, Reset)
		return
	}

	fmt.Printf("  %s%-28s %-32s %-25s %s%s\n", Bold, "PK", "SK", "EMAIL", "TTL", Reset)
	fmt.Printf("  %s%s%s\n", Dim, strings.Repeat("-", 100), Reset)
	now := time.Now().Unix()
	for _, item := range items {
		var ev models.Event
		if err := json.Unmarshal(item, &ev); err != nil {
			continue
		}
		remaining := ev.TTL - now
		color := Green
		if remaining < 60 {
			color = Yellow
		}
		fmt.Printf("  %-28s %-32s %-25s %s%ds%s\n", ev.PK, ev.SK, ev.Email, color, remaining, Reset)
	}
	fmt.Printf("  %s%d event(s)%s\n", Dim, len(items), Reset)
}

func apiGet(path string) {
	resp, err := http.Get(apiBase + path)
	if err != nil {
		fmt.Printf("  %s[x] %v%s\n", Red, err, Reset)
		return
	}
	printResponse(resp)
}

func apiPost(path, body string) {
	resp, err := http.Post(apiBase+path, "application/json", strings.NewReader(body))
	if err != nil {
		fmt.Printf("  %s[x] %v%s\n", Red, err, Reset)
		return
	}
	printResponse(resp)
}

func apiDelete(path string) {
	req, err := http.NewRequest(http.MethodDelete, apiBase+path, nil)
	if err != nil {
		fmt.Printf("  %s[x] %v%s\n", Red, err, Reset)
		return
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("  %s[x] %v%s\n", Red, err, Reset)
		return
	}
	printResponse(resp)
}

func printResponse(resp *http.Response) {
	defer resp.Body.Close()

	buf := new(bytes.Buffer)
	buf.ReadFrom(resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		fmt.Printf("  %s[%d]%s %s\n", Green, resp.StatusCode, Reset, indentJSON(buf.Bytes()))
	} else {
		fmt.Printf("  %s[%d]%s %s\n", Red, resp.StatusCode, Reset, buf.String())
	}
}

func indentJSON(raw []byte) string {
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "  ", "  "); err != nil {
		return string(raw)
	}
	return out.String()
}

func printHealthChecks() {
	fmt.Printf("  %s%sHealth%s\n", Bold, White, Reset)

	endpoints := []struct {
		name string
		url  string
	}{
		{"api", apiBase + "/health"},
		{"rabbitmq", "http://localhost:15672/"},
	}

	for _, ep := range endpoints {
		client := http.Client{Timeout: 2 * time.Second}
		resp, err := client.Get(ep.url)
		if err != nil {
			fmt.Printf("  %s[-]%s %-12s %soffline%s\n", Red, Reset, ep.name, Red, Reset)
			continue
		}
		resp.Body.Close()
		fmt.Printf("  %s[+]%s %-12s %sok%s\n", Green, Reset, ep.name, Green, Reset)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := events.Scan(ctx, "__ping__"); err != nil {
		fmt.Printf("  %s[-]%s %-12s %soffline%s\n", Red, Reset, "redis", Red, Reset)
	} else {
		fmt.Printf("  %s[+]%s %-12s %sok%s\n", Green, Reset, "redis", Green, Reset)
	}
}

func printHelp() {
	fmt.Println()
	fmt.Printf("  %s%sCommands%s\n", Bold, White, Reset)
	fmt.Printf("  %shealth%s  h    health checks\n", Green, Reset)
	fmt.Println()
	fmt.Printf("  %s--- Stack ---%s\n", Dim, Reset)
	fmt.Printf("  %sup%s           start stack\n", Green, Reset)
	fmt.Printf("  %sdown%s         stop stack\n", Green, Reset)
	fmt.Printf("  %slogs%s [svc]   tail logs\n", Green, Reset)
	fmt.Println()
	fmt.Printf("  %s--- Products ---%s\n", Dim, Reset)
	fmt.Printf("  %screate-product%s <name> <code> <price>\n", Green, Reset)
	fmt.Printf("  %sproducts%s       list products\n", Green, Reset)
	fmt.Printf("  %sget-product%s    <id>\n", Green, Reset)
	fmt.Printf("  %sdelete-product%s <id>\n", Green, Reset)
	fmt.Println()
	fmt.Printf("  %s--- Orders ---%s\n", Dim, Reset)
	fmt.Printf("  %screate-order%s   <email> <productId> [productId...]\n", Green, Reset)
	fmt.Printf("  %sorders%s [email] list orders\n", Green, Reset)
	fmt.Printf("  %sdelete-order%s   <email> <orderId>\n", Green, Reset)
	fmt.Println()
	fmt.Printf("  %s--- Audit ---%s\n", Dim, Reset)
	fmt.Printf("  %sevents%s                all live audit events\n", Green, Reset)
	fmt.Printf("  %sevents product%s        product events only\n", Green, Reset)
	fmt.Printf("  %sevents order%s          order events only\n", Green, Reset)
	fmt.Printf("  %sevents%s <code>         events for one product code\n", Green, Reset)
	fmt.Println()
	fmt.Printf("  %sclear%s        clear screen\n", Green, Reset)
	fmt.Printf("  %sexit%s         quit shell\n", Green, Reset)
	fmt.Println()
	fmt.Printf("  %sAnything else is passed to your system shell.%s\n", Dim, Reset)
}

func printBanner() {
	fmt.Println()
	fmt.Printf("  %s%s>> E-Commerce Catalog & Ordering%s\n", Bold, Cyan, Reset)
	fmt.Printf("  %sType 'help' for commands, or use any shell command%s\n", Dim, Reset)
	fmt.Println()
}

func shellExec(name string, args ...string) {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	if err := cmd.Run(); err != nil {
		fmt.Printf("  %s[x] %v%s\n", Red, err, Reset)
	}
}

func shellExecRaw(input string) {
	shell := "sh"
	if _, err := exec.LookPath("bash"); err == nil {
		shell = "bash"
	}

	cmd := exec.Command(shell, "-c", input)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	cmd.Run()
}

func clearScreen() {
	fmt.Print("\033[H\033[2J")
}
