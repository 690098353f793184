// Command shell is a local interactive client that drives the session
// layer directly against the database file, the same surface the mobile
// UI consumes.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"mechsathi/internal/assist"
	"mechsathi/internal/session"
	"mechsathi/internal/users"
	"mechsathi/pkg/database"
)

func main() {
	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	sess := session.New(db, nil)
	ctx := context.Background()

	if err := sess.Init(ctx); err != nil {
		log.Fatalf("init failed: %v", err)
	}

	fmt.Println("mechsathi shell - type 'help' for commands")
	sc := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !sc.Scan() {
			break
		}
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			break
		}
		run(ctx, sess, fields[0], fields[1:])
	}
	if err := sc.Err(); err != nil {
		log.Fatalf("stdin: %v", err)
	}
}

func run(ctx context.Context, sess *session.Session, cmd string, args []string) {
	switch cmd {
	case "help":
		printHelp()
	case "login":
		if len(args) < 1 {
			fmt.Println("usage: login <email> [password]")
			return
		}
		password := ""
		if len(args) > 1 {
			password = args[1]
		}
		ok, err := sess.Login(ctx, args[0], password)
		if err != nil {
			fmt.Printf("login error: %v\n", err)
			return
		}
		if !ok {
			fmt.Println("login failed")
			return
		}
		fmt.Printf("welcome back, %s\n", sess.CurrentUser().Name)
	case "register":
		if len(args) < 2 {
			fmt.Println("usage: register <name> <email> [phone]")
			return
		}
		phone := ""
		if len(args) > 2 {
			phone = args[2]
		}
		ok, err := sess.Register(ctx, args[0], args[1], phone)
		if err != nil {
			fmt.Printf("register error: %v\n", err)
			return
		}
		if !ok {
			fmt.Println("registration failed (email taken?)")
			return
		}
		fmt.Printf("registered as %s (#%d)\n", args[1], sess.CurrentUser().ID)
	case "logout":
		sess.Logout()
		fmt.Println("logged out")
	case "me":
		u := sess.CurrentUser()
		if u == nil {
			fmt.Println("not logged in")
			return
		}
		fmt.Printf("#%d %s <%s> %s\n", u.ID, u.Name, u.Email, u.Phone)
	case "rename":
		if len(args) < 1 {
			fmt.Println("usage: rename <new name>")
			return
		}
		name := strings.Join(args, " ")
		if err := sess.UpdateProfile(ctx, users.ProfileUpdate{Name: &name}); err != nil {
			fmt.Printf("update failed: %v\n", err)
			return
		}
		fmt.Println("profile updated")
	case "workshops":
		sess.LoadWorkshops(ctx)
		printWorkshopList(sess)
	case "search":
		if len(args) < 1 {
			fmt.Println("usage: search <query>")
			return
		}
		for _, w := range sess.SearchWorkshops(ctx, strings.Join(args, " ")) {
			fmt.Printf("#%d %s (%.1f) - %s\n", w.ID, w.Name, w.Rating, w.Location)
		}
	case "near":
		if len(args) < 2 {
			fmt.Println("usage: near <lat> <lng>")
			return
		}
		lat, err1 := strconv.ParseFloat(args[0], 64)
		lng, err2 := strconv.ParseFloat(args[1], 64)
		if err1 != nil || err2 != nil {
			fmt.Println("lat and lng must be numbers")
			return
		}
		for _, w := range sess.NearbyWorkshops(ctx, lat, lng) {
			fmt.Printf("#%d %s (%.1f) - %s [dist %.4f]\n", w.ID, w.Name, w.Rating, w.Location, w.Distance)
		}
	case "locations":
		sess.LoadSavedLocations(ctx)
		for _, l := range sess.SavedLocations() {
			fmt.Printf("#%d %s - %s (%g,%g)\n", l.ID, l.Name, l.Address, l.Latitude, l.Longitude)
		}
	case "saveloc":
		if len(args) < 3 {
			fmt.Println("usage: saveloc <name> <lat> <lng> [address...]")
			return
		}
		lat, err1 := strconv.ParseFloat(args[1], 64)
		lng, err2 := strconv.ParseFloat(args[2], 64)
		if err1 != nil || err2 != nil {
			fmt.Println("lat and lng must be numbers")
			return
		}
		address := strings.Join(args[3:], " ")
		if err := sess.SaveLocation(ctx, args[0], lat, lng, address); err != nil {
			fmt.Printf("save failed: %v\n", err)
			return
		}
		fmt.Println("saved")
	case "delloc":
		if len(args) < 1 {
			fmt.Println("usage: delloc <id>")
			return
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			fmt.Println("id must be a number")
			return
		}
		if err := sess.DeleteLocation(ctx, id); err != nil {
			fmt.Printf("delete failed: %v\n", err)
			return
		}
		fmt.Println("deleted")
	case "review":
		if len(args) < 2 {
			fmt.Println("usage: review <workshop-id> <rating> [comment...]")
			return
		}
		workshopID, err1 := strconv.ParseInt(args[0], 10, 64)
		rating, err2 := strconv.Atoi(args[1])
		if err1 != nil || err2 != nil {
			fmt.Println("workshop-id and rating must be numbers")
			return
		}
		comment := strings.Join(args[2:], " ")
		if err := sess.AddReview(ctx, workshopID, rating, comment); err != nil {
			fmt.Printf("review failed: %v\n", err)
			return
		}
		fmt.Println("review added")
	case "myreviews":
		sess.LoadUserReviews(ctx)
		for _, r := range sess.UserReviews() {
			fmt.Printf("#%d %s: %d/5 %s\n", r.ID, r.WorkshopName, r.Rating, r.Comment)
		}
	case "reviews":
		if len(args) < 1 {
			fmt.Println("usage: reviews <workshop-id>")
			return
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			fmt.Println("id must be a number")
			return
		}
		for _, r := range sess.WorkshopReviews(ctx, id) {
			fmt.Printf("#%d %s: %d/5 %s\n", r.ID, r.UserName, r.Rating, r.Comment)
		}
	case "emergency":
		fmt.Printf("call %s - %s\n", assist.EmergencyNumber, assist.EmergencyDialURL())
	case "call":
		if len(args) < 1 {
			fmt.Println("usage: call <workshop-id>")
			return
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			fmt.Println("id must be a number")
			return
		}
		for _, w := range sess.Workshops() {
			if w.ID == id {
				dial, err := assist.DialURL(w.Phone)
				if err != nil {
					fmt.Printf("cannot dial: %v\n", err)
					return
				}
				fmt.Printf("%s - %s\n", w.Phone, dial)
				nav := assist.MapsURL(w.Latitude, w.Longitude, w.Name)
				fmt.Printf("navigate: %s (web: %s)\n", nav.Native, nav.Web)
				return
			}
		}
		fmt.Println("workshop not in cache, run 'workshops' first")
	default:
		fmt.Printf("unknown command %q, try 'help'\n", cmd)
	}
}

func printWorkshopList(sess *session.Session) {
	for _, w := range sess.Workshops() {
		open := w.Hours
		if w.Is24x7 {
			open = "24/7"
		}
		fmt.Printf("#%d %s (%.1f) - %s, %s | %s | %s\n",
			w.ID, w.Name, w.Rating, w.Location, w.Highway, open, strings.Join(w.Services, ", "))
	}
}

func printHelp() {
	fmt.Println("account:   login, register, logout, me, rename")
	fmt.Println("workshops: workshops, search, near, reviews, call")
	fmt.Println("locations: locations, saveloc, delloc")
	fmt.Println("reviews:   review, myreviews")
	fmt.Println("assist:    emergency")
	fmt.Println("           quit")
}
