package config

type WorkerKeyStruct struct {
	ReminderQueue string
}

var WorkerKey = &WorkerKeyStruct{
	ReminderQueue: "assignment_reminders_queue",
}
