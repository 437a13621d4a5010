package notification

// Titles used across the loan services.
const (
	TitleApplicationSubmitted = "Loan Application Submitted"
	TitleWelcome              = "Welcome to QuickLoan!"
	TitleUnderReview          = "Application Under Review"
	TitleMoreInfo             = "More Information Needed"
	TitleApproved             = "Application Approved! 🎉"
	TitleRejected             = "Application Rejected"
	TitleDocumentUploaded     = "Document Uploaded"
	TitleDocumentVerified     = "Document Verified"
	TitleDisbursed            = "Loan Disbursement Successful! 🎉"
	TitleDisbursementFailed   = "Loan Disbursement Failed"
	TitleScheduleCreated      = "Payment Schedule Created"
	TitlePaymentSuccessful    = "Payment Successful! ✅"
	TitlePaymentFailed        = "Payment Failed"
	TitleLoanPaidOff          = "Loan Fully Paid! 🎊"
	TitlePaymentOverdue       = "Payment Overdue"
	TitleProfileCompleted     = "Profile Completed!"
	TitleProfileUpdated       = "Profile Updated"
)
