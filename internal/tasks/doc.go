// Package tasks owns the device task list: a bounded, ordered sequence of
// tasks with duplicate suppression, in-place reordering and write-through
// persistence.
//
// The persisted blob (key "tasks") has the shape:
//
//	{
//	  "tasks": [
//	    {
//	      "title": "Ship v1",
//	      "month": "Jun",
//	      "day": 5,
//	      "time": "3:00 PM",
//	      "priority": 1,
//	      "status": "In Progress",
//	      "notes": "Free text,\nmay span lines"
//	    }
//	  ]
//	}
//
// The same element shape is used for the full task dump on the serial link.
//
// # Duplicates
//
// Two tasks are duplicates when title, month, day, time and priority all
// match. Status and notes are ignored. A month of "" and "None" both mean
// "no date" and compare equal.
//
// # Status Values
//
//   - "": no status
//   - "In Progress"
//   - "Paused"
//   - "Waiting On"
//   - "Done"
//   - "Ready to Ship"
//
// "NULL" and "None" are accepted on every ingestion path and stored as "".
//
// # Failure Policy
//
// Operations never panic and never return errors. Each reports an Outcome;
// an out-of-range index is a no-op. Persistence failures are logged and
// otherwise ignored.
package tasks
