package gateway

import "fmt"

// messages maps ZarinPal codes to the Persian text shown to shoppers.
var messages = map[int]string{
	-1:   "اطلاعات ارسال شده ناقص است",
	-2:   "IP یا مرچنت کد پذیرفته نشده است",
	-3:   "با توجه به محدودیت‌های شاپرک امکان پرداخت با رقم درخواستی میسر نمی‌باشد",
	-4:   "سطح تایید پذیرنده پایین تر از سطح نقره ای است",
	-9:   "خطای اعتبار سنجی اطلاعات ارسالی",
	-10:  "IP یا مرچنت کد پذیرنده صحیح نیست",
	-11:  "درخواست مورد نظر یافت نشد",
	-12:  "امکان ویرایش درخواست میسر نمی‌باشد",
	-15:  "ترمینال پذیرنده به حالت تعلیق درآمده است",
	-16:  "سطح تایید پذیرنده پایین تر از سطح نقره ای است",
	-21:  "هیچ نوع عملیات مالی برای این تراکنش یافت نشد",
	-22:  "تراکنش ناموفق می‌باشد",
	-30:  "اجازه دسترسی به تسویه اشتراکی شناور وجود ندارد",
	-33:  "رقم تراکنش با رقم پرداخت شده مطابقت ندارد",
	-34:  "سقف تقسیم تراکنش از لحاظ تعداد یا رقم عبور نموده است",
	-40:  "اجازه دسترسی به متد مربوطه وجود ندارد",
	-41:  "اطلاعات ارسال شده مربوط به AdditionalData غیرمعتبر می‌باشد",
	-42:  "مدت زمان معتبر طول عمر شناسه پرداخت باید بین ۳۰ دقیقه تا ۴۵ روز می‌باشد",
	-50:  "مبلغ پرداخت شده با مبلغ ارسالی در تایید پرداخت متفاوت است",
	-51:  "پرداخت ناموفق",
	-52:  "خطای غیر منتظره در درگاه پرداخت",
	-53:  "پرداخت متعلق به این مرچنت کد نیست",
	-54:  "درخواست مورد نظر آرشیو شده است",
	-55:  "تراکنش مورد نظر یافت نشد",
	-101: "عملیات پرداخت ناموفق بوده است",
	101:  "تراکنش قبلا تایید شده است",
}

// MessageFor returns the shopper-facing message for a gateway code.
func MessageFor(code int) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return fmt.Sprintf("خطای %d", code)
}
