//go:build ignore

package main

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"

	_ "github.com/mattn/go-sqlite3"
)

const entryToolDoc = `Journal Entry Admin Tool

Usage:
  entry_tool <entry_id>...
  entry_tool -i
  entry_tool -h
Options:
  -h            Show this screen.
  -i            Dump all entries and owners to STDOUT.

Deletes entries by id, bypassing ownership. Offline maintenance only.`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(entryToolDoc)
		return
	}

	dbPath := os.Getenv("JOURNAL_DB_PATH")
	if dbPath == "" {
		dbPath = "./journal.db"
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Can't open database: %s\n", err)
		os.Exit(1)
	}
	defer db.Close()

	switch os.Args[1] {
	case "-h":
		fmt.Println(entryToolDoc)
	case "-i":
		rows, err := db.Query(`
			SELECT entries.id, users.username, entries.content, entries.timestamp
			FROM entries JOIN users ON entries.user_id = users.id
			ORDER BY entries.timestamp DESC`)
		if err != nil {
			fmt.Fprintf(os.Stderr, "SQL error: %s\n", err)
			os.Exit(1)
		}
		defer rows.Close()
		for rows.Next() {
			var id int64
			var username, content, timestamp string
			rows.Scan(&id, &username, &content, &timestamp)
			fmt.Printf("%d,%s,%s,%s\n", id, username, timestamp, content)
		}
	default:
		for _, arg := range os.Args[1:] {
			id, err := strconv.ParseInt(arg, 10, 64)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Invalid entry ID: %s\n", arg)
				continue
			}
			res, err := db.Exec("DELETE FROM entries WHERE id = ?", id)
			if err != nil {
				fmt.Fprintf(os.Stderr, "SQL error: %s\n", err)
				continue
			}
			if n, _ := res.RowsAffected(); n == 0 {
				fmt.Fprintf(os.Stderr, "No such entry: %d\n", id)
			} else {
				fmt.Printf("Deleted entry: %d\n", id)
			}
		}
	}
}
